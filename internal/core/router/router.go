// Package router serves the locationId codec, the cell mappers and the words
// lookups over HTTP.
package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/unl-locationid/internal/core/config"
	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
	"github.com/mohammed-shakir/unl-locationid/internal/core/observability"
	"github.com/mohammed-shakir/unl-locationid/internal/locationid"
	mylog "github.com/mohammed-shakir/unl-locationid/internal/logger"
	h3mapper "github.com/mohammed-shakir/unl-locationid/internal/mapper/h3"
	unlmapper "github.com/mohammed-shakir/unl-locationid/internal/mapper/unl"
	"github.com/mohammed-shakir/unl-locationid/internal/words"
)

// WordsResolver looks up words; *words.Resolver implements it.
type WordsResolver interface {
	ToWords(ctx context.Context, location string) (model.Location, error)
	Words(ctx context.Context, words string) (model.Location, error)
}

type Deps struct {
	Logger *slog.Logger
	Config config.Config
	Cells  *unlmapper.Mapper
	H3     *h3mapper.Mapper
	Words  WordsResolver
}

type handlers struct {
	log   *slog.Logger
	cfg   config.Config
	cells *unlmapper.Mapper
	h3    *h3mapper.Mapper
	words WordsResolver
}

// Mount registers the /v1 API on r.
func Mount(r chi.Router, d Deps) {
	h := &handlers{log: d.Logger, cfg: d.Config, cells: d.Cells, h3: d.H3, words: d.Words}
	if h.log == nil {
		h.log = slog.Default()
	}
	if h.cells == nil {
		h.cells = unlmapper.New(d.Config.CellsMax)
	}
	if h.h3 == nil {
		h.h3 = h3mapper.New()
	}
	if h.cfg.DefaultPrecision == 0 {
		h.cfg.DefaultPrecision = locationid.DefaultPrecision
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/encode", h.encode)
		r.Get("/decode/{id}", h.decode)
		r.Get("/bounds/{id}", h.bounds)
		r.Get("/adjacent/{id}/{direction}", h.adjacent)
		r.Get("/neighbours/{id}", h.neighbours)
		r.Get("/parent/{id}", h.parent)
		r.Get("/children/{id}", h.children)
		r.Get("/gridlines", h.gridLines)
		r.Get("/cells", h.cellsForBBox)
		r.Get("/locations/{id}/h3", h.h3Cells)
		r.Get("/words", h.toWords)
		r.Get("/words/{words}", h.fromWords)
	})
}

type locationIDResponse struct {
	LocationID string `json:"locationId"`
}

// encode uses EncodeAuto unless a precision is given.
func (h *handlers) encode(w http.ResponseWriter, r *http.Request) {
	id, err := func() (string, error) {
		lat, err := queryFloat(r, "lat")
		if err != nil {
			return "", err
		}
		lon, err := queryFloat(r, "lon")
		if err != nil {
			return "", err
		}
		elev, err := parseElevation(r)
		if err != nil {
			return "", err
		}
		if r.URL.Query().Get("precision") == "" {
			return locationid.EncodeAuto(lat, lon, elev)
		}
		p, err := queryInt(r, "precision", 0)
		if err != nil {
			return "", err
		}
		return locationid.Encode(lat, lon, p, elev)
	}()
	observability.ObserveCodecOp("encode", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locationIDResponse{LocationID: id})
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := locationid.Decode(id)
	observability.ObserveCodecOp("decode", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type boundsResponse struct {
	Bounds    model.Bounds    `json:"bounds"`
	Elevation model.Elevation `json:"elevation"`
	AreaKm2   float64         `json:"areaKm2"`
}

func (h *handlers) bounds(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, elev, err := locationid.Bounds(id)
	observability.ObserveCodecOp("bounds", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, boundsResponse{Bounds: b, Elevation: elev, AreaKm2: unlmapper.AreaKm2(b)})
}

func (h *handlers) adjacent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := locationid.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	next, err := locationid.Adjacent(id, d)
	observability.ObserveCodecOp("adjacent", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locationIDResponse{LocationID: next})
}

func (h *handlers) neighbours(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	n, err := locationid.Neighbours(id)
	observability.ObserveCodecOp("neighbours", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// parent and children default to one level above or below id.
func (h *handlers) parent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bare, _, err := locationid.ExcludeElevation(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := queryInt(r, "precision", len(bare)-1)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.cells.ToParent(id, p)
	observability.ObserveCodecOp("parent", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locationIDResponse{LocationID: out})
}

func (h *handlers) children(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bare, _, err := locationid.ExcludeElevation(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := queryInt(r, "precision", len(bare)+1)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cells, err := h.cells.ToChildren(id, p)
	observability.ObserveCodecOp("children", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cellsResponse{Precision: p, Count: len(cells), Cells: cells})
}

type gridLinesResponse struct {
	Precision int          `json:"precision"`
	Lines     []model.Line `json:"lines"`
}

func (h *handlers) gridLines(w http.ResponseWriter, r *http.Request) {
	b, p, err := h.bboxAndPrecision(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if limit := h.cfg.GridMaxLines; limit > 0 {
		if n := locationid.GridLineCount(b, p); n > limit {
			h.fail(w, r, badRequest("bbox needs about %d grid lines at precision %d (max %d)", n, p, limit))
			return
		}
	}
	lines, err := locationid.GridLines(b, p)
	observability.ObserveCodecOp("gridlines", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if lines == nil {
		lines = []model.Line{}
	}
	writeJSON(w, http.StatusOK, gridLinesResponse{Precision: p, Lines: lines})
}

type cellsResponse struct {
	Precision int         `json:"precision"`
	Count     int         `json:"count"`
	Cells     model.Cells `json:"cells"`
}

func (h *handlers) cellsForBBox(w http.ResponseWriter, r *http.Request) {
	b, p, err := h.bboxAndPrecision(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cells, err := h.cells.CellsForBounds(b, p)
	observability.ObserveCodecOp("cells", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cellsResponse{Precision: p, Count: len(cells), Cells: cells})
}

type h3Response struct {
	LocationID string      `json:"locationId"`
	Res        int         `json:"res"`
	Cells      model.Cells `json:"cells"`
}

func (h *handlers) h3Cells(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := queryInt(r, "res", 9)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cells, err := h.h3.CellsForLocationID(id, res)
	observability.ObserveCodecOp("h3", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h3Response{LocationID: id, Res: res, Cells: cells})
}

func (h *handlers) toWords(w http.ResponseWriter, r *http.Request) {
	loc := r.URL.Query().Get("location")
	if loc == "" {
		h.fail(w, r, badRequest("missing required parameter: location"))
		return
	}
	ctx := mylog.WithLocationID(r.Context(), loc)
	out, err := h.resolver().ToWords(ctx, loc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) fromWords(w http.ResponseWriter, r *http.Request) {
	ws, err := idParam(r, "words")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.resolver().Words(r.Context(), ws)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) bboxAndPrecision(r *http.Request) (model.Bounds, int, error) {
	raw := r.URL.Query().Get("bbox")
	if raw == "" {
		return model.Bounds{}, 0, badRequest("missing required parameter: bbox")
	}
	b, err := parseBBox(raw)
	if err != nil {
		return model.Bounds{}, 0, err
	}
	p, err := queryInt(r, "precision", h.cfg.DefaultPrecision)
	if err != nil {
		return model.Bounds{}, 0, err
	}
	if p < 1 || p > locationid.MaxPrecision {
		return model.Bounds{}, 0, badRequest("precision must be in [1,%d]", locationid.MaxPrecision)
	}
	return b, p, nil
}

// resolver falls back to a resolver that always reports a missing API key.
func (h *handlers) resolver() WordsResolver {
	if h.words == nil {
		return noWords{}
	}
	return h.words
}

type noWords struct{}

func (noWords) ToWords(context.Context, string) (model.Location, error) {
	return model.Location{}, words.ErrNoAPIKey
}

func (noWords) Words(context.Context, string) (model.Location, error) {
	return model.Location{}, words.ErrNoAPIKey
}
