package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
	"github.com/mohammed-shakir/unl-locationid/internal/invalidation"
	"github.com/mohammed-shakir/unl-locationid/internal/locationid"
	unlmapper "github.com/mohammed-shakir/unl-locationid/internal/mapper/unl"
	"github.com/mohammed-shakir/unl-locationid/pkg/invalidation/kafka"
)

type publisher interface {
	Publish(ctx context.Context, ev invalidation.Event) (invalidation.Event, error)
	Close() error
}

// newPublisher is replaced in tests.
var newPublisher = func() (publisher, error) {
	return kafka.New(kafka.FromEnv(), kafka.Options{})
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "unl",
		Short:         "Encode, decode and navigate UNL locationIds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newBoundsCmd(),
		newAdjacentCmd(),
		newNeighboursCmd(),
		newGridLinesCmd(),
		newCellsCmd(),
		newInvalidateCmd(),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newEncodeCmd() *cobra.Command {
	var (
		lat, lon      float64
		precision     int
		elevation     int32
		elevationType string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a coordinate into a locationId",
		Example: `  unl encode --lat 57.648 --lon 10.41 --precision 6
  unl encode --lat 57.648 --lon 10.41 --elevation 87 --elevation-type heightincm`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			et, err := model.ParseElevationType(elevationType)
			if err != nil {
				return err
			}
			elev := model.Elevation{Number: elevation, Type: et}
			var id string
			if precision == 0 {
				id, err = locationid.EncodeAuto(lat, lon, elev)
			} else {
				id, err = locationid.Encode(lat, lon, precision, elev)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees")
	cmd.Flags().IntVarP(&precision, "precision", "p", 0, "number of characters (0 picks the shortest exact one)")
	cmd.Flags().Int32VarP(&elevation, "elevation", "e", 0, "floor number or height in cm")
	cmd.Flags().StringVar(&elevationType, "elevation-type", "floor", "floor or heightincm")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <locationId>",
		Short: "Decode a locationId into its centre, elevation and bounds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := locationid.Decode(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	}
}

func newBoundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bounds <locationId>",
		Short: "Print the cell bounds of a locationId and its area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, elev, err := locationid.Bounds(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Bounds    model.Bounds    `json:"bounds"`
				Elevation model.Elevation `json:"elevation"`
				AreaKm2   float64         `json:"areaKm2"`
			}{b, elev, unlmapper.AreaKm2(b)})
		},
	}
}

func newAdjacentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adjacent <locationId> <n|s|e|w>",
		Short: "Print the neighbouring locationId in one direction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := locationid.ParseDirection(args[1])
			if err != nil {
				return err
			}
			id, err := locationid.Adjacent(args[0], d)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
}

func newNeighboursCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "neighbours <locationId>",
		Aliases: []string{"neighbors"},
		Short:   "Print all eight neighbours of a locationId",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := locationid.Neighbours(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		},
	}
}

func newGridLinesCmd() *cobra.Command {
	var (
		bbox      string
		precision int
		count     bool
	)
	cmd := &cobra.Command{
		Use:   "gridlines",
		Short: "Print the grid lines of a precision over a bounding box",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := model.ParseBounds(bbox)
			if err != nil {
				return fmt.Errorf("bbox: %w", err)
			}
			if count {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), locationid.GridLineCount(b, precision))
				return err
			}
			lines, err := locationid.GridLines(b, precision)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), lines)
		},
	}
	cmd.Flags().StringVar(&bbox, "bbox", "", "bounding box as w,s,e,n")
	cmd.Flags().IntVarP(&precision, "precision", "p", locationid.DefaultPrecision, "grid precision")
	cmd.Flags().BoolVar(&count, "count", false, "only print the estimated number of lines")
	_ = cmd.MarkFlagRequired("bbox")
	return cmd
}

func newCellsCmd() *cobra.Command {
	var (
		bbox      string
		precision int
		maxCells  int
	)
	cmd := &cobra.Command{
		Use:   "cells",
		Short: "List the locationId cells covering a bounding box",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := model.ParseBounds(bbox)
			if err != nil {
				return fmt.Errorf("bbox: %w", err)
			}
			cells, err := unlmapper.New(maxCells).CellsForBounds(b, precision)
			if err != nil {
				return err
			}
			for _, c := range cells {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), c); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bbox, "bbox", "", "bounding box as w,s,e,n")
	cmd.Flags().IntVarP(&precision, "precision", "p", 7, "cell precision")
	cmd.Flags().IntVar(&maxCells, "max", unlmapper.DefaultMaxCells, "refuse boxes needing more cells")
	_ = cmd.MarkFlagRequired("bbox")
	return cmd
}

func newInvalidateCmd() *cobra.Command {
	var (
		op       string
		bbox     string
		ids      []string
		wordList []string
		source   string
	)
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Publish a words-cache invalidation event to Kafka",
		Long: `Publish an invalidation event. Brokers and topic come from KAFKA_BROKERS
and KAFKA_TOPIC; TLS and SASL from the KAFKA_TLS_* and KAFKA_SASL_* variables.`,
		Example: `  unl invalidate --op remap --id u4pruy --id u4pruz
  unl invalidate --op delete --bbox 10.40,57.64,10.42,57.65`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ev := invalidation.Event{
				Op:          op,
				LocationIDs: ids,
				Words:       wordList,
				Source:      source,
			}
			if bbox != "" {
				b, err := model.ParseBounds(bbox)
				if err != nil {
					return fmt.Errorf("bbox: %w", err)
				}
				ev.BBox = &invalidation.BBox{W: b.SW.Lon, S: b.SW.Lat, E: b.NE.Lon, N: b.NE.Lat}
			}

			p, err := newPublisher()
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			sent, err := p.Publish(cmd.Context(), ev)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sent.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&op, "op", invalidation.OpRemap, "remap or delete")
	cmd.Flags().StringVar(&bbox, "bbox", "", "bounding box as w,s,e,n")
	cmd.Flags().StringArrayVar(&ids, "id", nil, "locationId to invalidate (repeatable)")
	cmd.Flags().StringArrayVar(&wordList, "words", nil, "words to invalidate (repeatable)")
	cmd.Flags().StringVar(&source, "source", "unl-cli", "event source")
	return cmd
}
