package web

import (
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rook-computer/crhashtag/internal/card"
	"github.com/rook-computer/crhashtag/internal/export"
	"github.com/rook-computer/crhashtag/internal/fonts"
	"github.com/rook-computer/crhashtag/internal/icons"
	"github.com/rook-computer/crhashtag/internal/palette"
	"github.com/rook-computer/crhashtag/internal/state"
)

type blankRenderer struct{}

func (blankRenderer) RenderOne(card.Composition) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 1200, 1200))
}

func (blankRenderer) Render(comps []card.Composition, size image.Point) *image.RGBA {
	return image.NewRGBA(image.Rectangle{Max: size})
}

type testEnv struct {
	router *gin.Engine
	store  *state.Store
	outDir string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	iconDir := t.TempDir()
	for _, name := range []string{"beach_day.png", "sunset_beach.png", "sun_hat.png"} {
		if err := os.WriteFile(filepath.Join(iconDir, name), []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	iconCatalog, err := icons.LoadCatalog(iconDir)
	if err != nil {
		t.Fatal(err)
	}

	store := state.NewStore()
	outDir := t.TempDir()
	deps := APIV1Deps{
		Store: store,
		Fonts: fonts.Catalog{Names: []string{"Anton.ttf", "Roboto.ttf"}},
		Icons: iconCatalog,
		Swatches: []palette.Swatch{
			{Name: "warm_rgbff0000_rgb00ff00.png", Colors: []string{"#ff0000", "#00ff00"}},
			{Name: "cool_rgb0000ff.png", Colors: []string{"#0000ff"}},
		},
		Renderer: blankRenderer{},
		Exporter: &export.Exporter{Renderer: blankRenderer{}, OutputDir: outDir},
	}
	router := NewRouter(RouterConfig{Deps: deps, DevMode: true})
	return testEnv{router: router, store: store, outDir: outDir}
}

func (e testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("Expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	var body apiError
	decode(t, rec, &body)
	if body.Error != code {
		t.Errorf("Expected error %q, got %q", code, body.Error)
	}
}

func TestListFonts(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/fonts", "")
	var body struct {
		Fonts []string `json:"fonts"`
	}
	decode(t, rec, &body)
	if len(body.Fonts) != 2 || body.Fonts[0] != "Anton.ttf" {
		t.Errorf("Expected catalog fonts, got %v", body.Fonts)
	}
}

func TestSearchIcons(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/icons?q=beach", "")
	var body struct {
		Icons []icons.Match `json:"icons"`
	}
	decode(t, rec, &body)
	if len(body.Icons) != 2 {
		t.Fatalf("Expected 2 matches, got %+v", body.Icons)
	}
	if body.Icons[0].Name != "beach_day.png" || body.Icons[0].Score <= body.Icons[1].Score {
		t.Errorf("Expected beach_day.png ranked first, got %+v", body.Icons)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/icons", "")
	decode(t, rec, &body)
	if len(body.Icons) != 3 {
		t.Errorf("Expected full listing without a query, got %d", len(body.Icons))
	}
}

func TestIconFile(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodGet, "/api/v1/icons/sun_hat.png", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	expectError(t, env.do(t, http.MethodGet, "/api/v1/icons/nope.png", ""), http.StatusNotFound, "asset_not_found")
}

func TestDeriveColors(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/palette/derive?color=804020", "")
	var got palette.EffectColors
	decode(t, rec, &got)
	if got.Stroke != "#402010" || got.Outline != "#c0a090" || got.Shadow != "#d5bfb5" {
		t.Errorf("Unexpected derived colors %+v", got)
	}
	expectError(t, env.do(t, http.MethodGet, "/api/v1/palette/derive?color=zz", ""), http.StatusBadRequest, "bad_color")
}

func TestCardLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cards", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}
	var created cardResponse
	decode(t, rec, &created)
	if created.Index != 0 || created.Card.FontSizes[card.Text0] != 50 {
		t.Errorf("Expected default card at 0, got %+v", created)
	}

	rec = env.do(t, http.MethodPut, "/api/v1/cards/0", `{"lines":["#surf","","up"],"fonts":["Anton.ttf"],"effects":{"shadow":true,"shadow_offset":4}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stored, err := env.store.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Lines[0] != "#surf" || !stored.Effects.Shadow || stored.Effects.ShadowOffset != 4 {
		t.Errorf("Expected update applied, got %+v", stored)
	}
	if stored.FontSizes[card.Text1] != 50 {
		t.Error("Expected fields missing from the body to keep their values")
	}

	env.do(t, http.MethodPost, "/api/v1/cards", "")
	if rec := env.do(t, http.MethodPost, "/api/v1/cards/0/select", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected select 200, got %d", rec.Code)
	}
	if cur, _, _ := env.store.Current(); cur != 0 {
		t.Errorf("Expected card 0 selected, got %d", cur)
	}

	if rec := env.do(t, http.MethodDelete, "/api/v1/cards/1", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected delete 200, got %d", rec.Code)
	}
	var list cardsResponse
	decode(t, env.do(t, http.MethodGet, "/api/v1/cards", ""), &list)
	if len(list.Cards) != 1 {
		t.Errorf("Expected 1 card, got %d", len(list.Cards))
	}
	if len(list.Labels) != 1 || list.Labels[0] != "Card 1: #surf" {
		t.Errorf("Expected label for card 1, got %v", list.Labels)
	}
}

func TestCardViewCarriesLabelAndColors(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cards", `{"active":true,"lines":["#tag","",""],"colors":["#ff0000"]}`)

	var got cardResponse
	decode(t, env.do(t, http.MethodGet, "/api/v1/cards/0", ""), &got)
	if got.Label != "Card 1: #tag" {
		t.Errorf("Expected label %q, got %q", "Card 1: #tag", got.Label)
	}
	if got.LineColors != [3]string{"#ff0000", "#000000", "#000000"} {
		t.Errorf("Expected padded line colors, got %v", got.LineColors)
	}
}

func TestEditRejectsOutOfRangeValues(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cards", "")

	bodies := []string{
		`{"font_sizes":{"text0":200000}}`,
		`{"icon_sizes":{"big_icon":{"w":90000,"h":90000}}}`,
		`{"effects":{"outline":true,"outline_width":400}}`,
		`{"effects":{"shadow":true,"shadow_offset":11}}`,
		`{"fonts":["Missing.ttf"]}`,
	}
	for _, body := range bodies {
		expectError(t, env.do(t, http.MethodPut, "/api/v1/cards/0", body), http.StatusUnprocessableEntity, "invalid_composition")
	}
	expectError(t, env.do(t, http.MethodPost, "/api/v1/cards", `{"font_sizes":{"text0":200000}}`), http.StatusUnprocessableEntity, "invalid_composition")

	stored, _ := env.store.Get(0)
	if stored.FontSizes[card.Text0] != 50 || stored.Effects.OutlineWidth != 1 || len(stored.Fonts) != 0 {
		t.Errorf("Expected rejected edits to leave the card untouched, got %+v", stored)
	}

	rec := env.do(t, http.MethodPut, "/api/v1/cards/0", `{"font_sizes":{"text0":1200},"effects":{"stroke":true,"stroke_width":5},"fonts":["Roboto.ttf"]}`)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected values at the limits to be accepted, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateInPreviewSpace(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cards", "")

	// 800px preview, 1200px canvas.
	rec := env.do(t, http.MethodPut, "/api/v1/cards/0?space=preview", `{"positions":{"text0":{"x":100,"y":200}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stored, _ := env.store.Get(0)
	if got := stored.Positions[card.Text0]; got != (card.Point{X: 150, Y: 300}) {
		t.Errorf("Expected canvas position (150,300), got %+v", got)
	}
	if got := stored.Positions[card.Text1]; got != (card.Point{X: 150, Y: 250}) {
		t.Errorf("Expected positions left out of the body untouched, got %+v", got)
	}

	var view cardResponse
	decode(t, rec, &view)
	if got := view.Card.Positions[card.Text0]; got != (card.Point{X: 100, Y: 200}) {
		t.Errorf("Expected preview position in the response, got %+v", got)
	}

	decode(t, env.do(t, http.MethodGet, "/api/v1/cards/0", ""), &view)
	if got := view.Card.Positions[card.Text0]; got != (card.Point{X: 150, Y: 300}) {
		t.Errorf("Expected canvas position by default, got %+v", got)
	}
}

func TestCardErrors(t *testing.T) {
	env := newTestEnv(t)
	expectError(t, env.do(t, http.MethodGet, "/api/v1/cards/3", ""), http.StatusNotFound, "no_card")
	expectError(t, env.do(t, http.MethodGet, "/api/v1/cards/abc", ""), http.StatusBadRequest, "bad_index")

	env.do(t, http.MethodPost, "/api/v1/cards", "")
	expectError(t, env.do(t, http.MethodPut, "/api/v1/cards/0", `{"fonts":["a","b","c","d"]}`), http.StatusUnprocessableEntity, "invalid_composition")
	expectError(t, env.do(t, http.MethodPut, "/api/v1/cards/0", `{"lines":`), http.StatusBadRequest, "bad_request")
}

func TestApplySwatches(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cards", "")
	rec := env.do(t, http.MethodPost, "/api/v1/cards/0/colors", `{"swatches":["warm_rgbff0000_rgb00ff00.png","cool_rgb0000ff.png"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stored, _ := env.store.Get(0)
	want := []string{"#ff0000", "#00ff00", "#0000ff"}
	for i, c := range want {
		if stored.Colors[i] != c {
			t.Errorf("Line %d: expected %s, got %s", i+1, c, stored.Colors[i])
		}
	}
	expectError(t, env.do(t, http.MethodPost, "/api/v1/cards/0/colors", `{"swatches":["missing.png"]}`), http.StatusNotFound, "asset_not_found")
}

func TestImportReplacesCards(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cards", "")
	env.do(t, http.MethodPost, "/api/v1/cards", "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader("#one\nA\n\nB\n#two\n"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	var body struct {
		Count int `json:"count"`
	}
	decode(t, rec, &body)
	if body.Count != 2 {
		t.Fatalf("Expected 2 imported cards, got %d", body.Count)
	}
	snap := env.store.Snapshot()
	if len(snap.Cards) != 2 || snap.Cards[1].Lines[0] != "#two" {
		t.Errorf("Expected imported cards to replace the old ones, got %+v", snap.Cards)
	}
	if snap.Cards[0].FontSizes[card.Text1] != 160 {
		t.Error("Expected import defaults")
	}
}

func TestPreviewPNG(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cards", "")

	rec := env.do(t, http.MethodGet, "/api/v1/cards/0/preview?size=200", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("Expected PNG, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("Expected 200px preview, got %v", img.Bounds())
	}
}

func TestExportEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cards", `{"active":true,"lines":["#a","",""],"fonts":["Anton.ttf"]}`)
	env.do(t, http.MethodPost, "/api/v1/cards", `{"active":true,"lines":["#nofont","",""]}`)

	rec := env.do(t, http.MethodPost, "/api/v1/export", "")
	var batch struct {
		Exported int            `json:"exported"`
		Results  []exportResult `json:"results"`
	}
	decode(t, rec, &batch)
	if batch.Exported != 1 || len(batch.Results) != 2 || batch.Results[1].Error == "" {
		t.Errorf("Expected one success and one failure, got %+v", batch)
	}
	if _, err := os.Stat(filepath.Join(env.outDir, "CrHashtag_P1.png")); err != nil {
		t.Errorf("Expected batch file: %v", err)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/cards/0/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	expectError(t, env.do(t, http.MethodPost, "/api/v1/cards/1/export", ""), http.StatusUnprocessableEntity, "invalid_composition")
	expectError(t, env.do(t, http.MethodPost, "/api/v1/export/combined", ""), http.StatusUnprocessableEntity, "invalid_composition")
}

func TestNoRouteAndCORS(t *testing.T) {
	env := newTestEnv(t)
	expectError(t, env.do(t, http.MethodGet, "/nope", ""), http.StatusNotFound, "not_found")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cards", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("Expected the origin to be echoed")
	}
}
