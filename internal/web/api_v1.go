package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rook-computer/crhashtag/internal/card"
	"github.com/rook-computer/crhashtag/internal/export"
	"github.com/rook-computer/crhashtag/internal/icons"
	"github.com/rook-computer/crhashtag/internal/palette"
	"github.com/rook-computer/crhashtag/internal/render"
	"github.com/rook-computer/crhashtag/internal/render/layout"
	"github.com/rook-computer/crhashtag/internal/state"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type cardsResponse struct {
	Cards    []card.Composition `json:"cards"`
	Labels   []string           `json:"labels"`
	Selected int                `json:"selected"`
}

type cardResponse struct {
	Index      int                    `json:"index"`
	Label      string                 `json:"label"`
	LineColors [card.LineCount]string `json:"line_colors"`
	Card       card.Composition       `json:"card"`
}

// positionsBody picks the positions out of an update body.
type positionsBody struct {
	Positions map[card.ElementKey]card.Point `json:"positions"`
}

type exportResult struct {
	Index int    `json:"index"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

type swatchRequest struct {
	Swatches []string `json:"swatches"`
}

type api struct {
	deps APIV1Deps
}

// RegisterAPIV1 registers the public API routes on group.
func RegisterAPIV1(group *gin.RouterGroup, deps APIV1Deps) {
	a := &api{deps: deps.withDefaults()}

	group.GET("/fonts", a.listFonts)
	group.GET("/swatches", a.listSwatches)
	group.GET("/icons", a.searchIcons)
	group.GET("/icons/:name", a.iconFile)
	group.GET("/palette/derive", a.deriveColors)

	group.GET("/cards", a.listCards)
	group.POST("/cards", a.addCard)
	group.GET("/cards/:index", a.getCard)
	group.PUT("/cards/:index", a.updateCard)
	group.DELETE("/cards/:index", a.deleteCard)
	group.POST("/cards/:index/select", a.selectCard)
	group.POST("/cards/:index/colors", a.applySwatches)
	group.GET("/cards/:index/preview", a.previewCard)
	group.POST("/cards/:index/export", a.exportCard)

	group.POST("/import", a.importCards)
	group.POST("/export", a.exportAll)
	group.POST("/export/combined", a.exportCombined)
}

func (a *api) listFonts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fonts": nonNil(a.deps.Fonts.Names)})
}

func (a *api) listSwatches(c *gin.Context) {
	swatches := a.deps.Swatches
	if swatches == nil {
		swatches = []palette.Swatch{}
	}
	c.JSON(http.StatusOK, gin.H{"swatches": swatches})
}

// searchIcons ranks the catalog against ?q=. Without a query every icon
// is listed in catalog order with a zero score.
func (a *api) searchIcons(c *gin.Context) {
	q := c.Query("q")
	var matches []icons.Match
	if q == "" {
		for _, name := range a.deps.Icons.Names {
			matches = append(matches, icons.Match{Name: name, Terms: []string{}})
		}
	} else {
		matches = a.deps.Icons.Search(q)
	}
	if matches == nil {
		matches = []icons.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "count": len(matches), "icons": matches})
}

func (a *api) iconFile(c *gin.Context) {
	name := c.Param("name")
	path, ok := a.deps.Icons.Path(name)
	if !ok || !contains(a.deps.Icons.Names, name) {
		writeAPIError(c, http.StatusNotFound, "asset_not_found", "unknown icon "+strconv.Quote(name))
		return
	}
	c.File(path)
}

func (a *api) deriveColors(c *gin.Context) {
	colors, err := palette.DeriveAll(c.Query("color"))
	if err != nil {
		writeAPIError(c, http.StatusBadRequest, "bad_color", err.Error())
		return
	}
	c.JSON(http.StatusOK, colors)
}

func (a *api) listCards(c *gin.Context) {
	snap := a.deps.Store.Snapshot()
	labels := make([]string, len(snap.Cards))
	for i, comp := range snap.Cards {
		labels[i] = comp.Label(i)
	}
	c.JSON(http.StatusOK, cardsResponse{Cards: snap.Cards, Labels: labels, Selected: snap.Selected})
}

// addCard appends a default card, or the card in the request body when
// one is sent.
func (a *api) addCard(c *gin.Context) {
	comp := card.New()
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&comp); err != nil {
			writeAPIError(c, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}
	if err := a.checkEditable(comp); err != nil {
		writeError(c, err)
		return
	}
	i := a.deps.Store.Append(comp)
	c.JSON(http.StatusCreated, a.view(c, i, comp))
}

func (a *api) getCard(c *gin.Context) {
	i, comp, ok := a.card(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a.view(c, i, comp))
}

// updateCard decodes the body over the stored card, so fields left out of
// the body keep their values. With ?space=preview the body positions are
// preview pixels and are stored as canvas pixels.
func (a *api) updateCard(c *gin.Context) {
	i, comp, ok := a.card(c)
	if !ok {
		return
	}
	if err := c.ShouldBindBodyWith(&comp, binding.JSON); err != nil {
		writeAPIError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if previewSpace(c) {
		var body positionsBody
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			writeAPIError(c, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		if comp.Positions == nil {
			comp.Positions = map[card.ElementKey]card.Point{}
		}
		scale := a.scale()
		for key, p := range body.Positions {
			comp.Positions[key] = scale.ToCanvas(p)
		}
	}
	if err := a.checkEditable(comp); err != nil {
		writeError(c, err)
		return
	}
	if err := a.deps.Store.Update(i, func(stored *card.Composition) { *stored = comp }); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.view(c, i, comp))
}

func (a *api) deleteCard(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	if err := a.deps.Store.Delete(i); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (a *api) selectCard(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	if err := a.deps.Store.Select(i); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

// applySwatches sets the line colors from up to two catalog swatches.
func (a *api) applySwatches(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	var req swatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	var selected [][]string
	for _, name := range req.Swatches {
		sw, found := a.swatch(name)
		if !found {
			writeAPIError(c, http.StatusNotFound, "asset_not_found", "unknown swatch "+strconv.Quote(name))
			return
		}
		selected = append(selected, sw.Colors)
	}
	colors := palette.LineColors(selected...)
	var comp card.Composition
	err := a.deps.Store.Update(i, func(stored *card.Composition) {
		stored.Colors = colors[:]
		comp = stored.Clone()
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.view(c, i, comp))
}

func (a *api) previewCard(c *gin.Context) {
	_, comp, ok := a.card(c)
	if !ok {
		return
	}
	size := a.deps.PreviewSize
	if raw := c.Query("size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= render.DefaultCanvasSize {
			size = v
		}
	}
	img := render.Preview(a.deps.Renderer.RenderOne(comp), size)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		writeAPIError(c, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (a *api) exportCard(c *gin.Context) {
	_, comp, ok := a.card(c)
	if !ok {
		return
	}
	comp.Active = true
	path, err := a.deps.Exporter.Export([]card.Composition{comp}, "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

func (a *api) exportCombined(c *gin.Context) {
	path, err := a.deps.Exporter.Export(a.deps.Store.Snapshot().Cards, "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// exportAll writes one file per active card with text. The status is 200
// even when some cards fail; each result carries its own error.
func (a *api) exportAll(c *gin.Context) {
	results := a.deps.Exporter.ExportAll(a.deps.Store.Snapshot().Cards)
	out := make([]exportResult, 0, len(results))
	for _, r := range results {
		res := exportResult{Index: r.Index, Path: r.Path}
		if r.Err != nil {
			res.Error = r.Err.Error()
		}
		out = append(out, res)
	}
	c.JSON(http.StatusOK, gin.H{
		"exported": len(results) - len(export.Failed(results)),
		"results":  out,
	})
}

// importCards replaces every card with the ones parsed from the plain
// text body.
func (a *api) importCards(c *gin.Context) {
	cards, err := card.ParseImport(c.Request.Body)
	if err != nil {
		writeAPIError(c, http.StatusBadRequest, "bad_import", err.Error())
		return
	}
	a.deps.Store.Replace(cards)
	if a.deps.Logger != nil {
		a.deps.Logger.Infof("web", "imported %d cards", len(cards))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(cards)})
}

func (a *api) card(c *gin.Context) (int, card.Composition, bool) {
	i, ok := index(c)
	if !ok {
		return 0, card.Composition{}, false
	}
	comp, err := a.deps.Store.Get(i)
	if err != nil {
		writeError(c, err)
		return 0, card.Composition{}, false
	}
	return i, comp, true
}

func (a *api) swatch(name string) (palette.Swatch, bool) {
	for _, sw := range a.deps.Swatches {
		if sw.Name == name {
			return sw, true
		}
	}
	return palette.Swatch{}, false
}

func index(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 {
		writeAPIError(c, http.StatusBadRequest, "bad_index", "card index must be a non-negative integer")
		return 0, false
	}
	return i, true
}

// view builds the response for card i. With ?space=preview positions are
// reported in preview pixels.
func (a *api) view(c *gin.Context, i int, comp card.Composition) cardResponse {
	if previewSpace(c) {
		scale := a.scale()
		comp = comp.Clone()
		for key, p := range comp.Positions {
			comp.Positions[key] = scale.ToPreview(p)
		}
	}
	return cardResponse{Index: i, Label: comp.Label(i), LineColors: comp.LineColors(), Card: comp}
}

func (a *api) scale() layout.Scale {
	return layout.Scale{From: a.deps.PreviewSize, To: a.deps.CanvasSize}
}

func previewSpace(c *gin.Context) bool {
	return c.Query("space") == "preview"
}

// checkEditable rejects cards that could never be exported or that ask
// for more than the renderer draws. A card with text but no font is still
// editable.
func (a *api) checkEditable(comp card.Composition) error {
	if len(comp.Fonts) > card.LineCount {
		return comp.Validate()
	}
	for _, name := range comp.Fonts {
		if !a.deps.Fonts.Contains(name) {
			return fmt.Errorf("%w: unknown font %q", card.ErrInvalidComposition, name)
		}
	}
	return comp.CheckLimits()
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, state.ErrNoCard):
		writeAPIError(c, http.StatusNotFound, "no_card", err.Error())
	case errors.Is(err, card.ErrInvalidComposition):
		writeAPIError(c, http.StatusUnprocessableEntity, "invalid_composition", err.Error())
	case errors.Is(err, card.ErrAssetNotFound):
		writeAPIError(c, http.StatusNotFound, "asset_not_found", err.Error())
	case errors.Is(err, card.ErrAssetDecode):
		writeAPIError(c, http.StatusUnprocessableEntity, "asset_decode", err.Error())
	case export.IsWriteError(err):
		writeAPIError(c, http.StatusInternalServerError, "output_write_failed", err.Error())
	default:
		writeAPIError(c, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeAPIError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, apiError{Error: code, Message: message})
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
