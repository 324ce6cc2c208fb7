package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/lojasmm/wamsg"
	"github.com/lojasmm/wamsg/internal/catalog"
	"github.com/lojasmm/wamsg/internal/server"
)

type composeResult struct {
	Message wamsg.Message   `json:"message"`
	Proto   json.RawMessage `json:"proto"`
	Error   string          `json:"error"`
}

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	store, err := catalog.NewBoltStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	compose := server.NewComposeHandler(1 << 20)
	templates := server.NewTemplateHandler(store, 1<<20)

	r := chi.NewRouter()
	r.Post("/v1/messages/ios-webview", compose.HandleIOSWebview)
	r.Post("/v1/messages/interactive", compose.HandleInteractive)
	r.Post("/v1/messages/list", compose.HandleList)
	r.Post("/v1/messages/carousel", compose.HandleCarousel)
	r.Post("/v1/templates", templates.HandleCreate)
	r.Get("/v1/templates", templates.HandleList)
	r.Get("/v1/templates/{id}", templates.HandleGet)
	r.Delete("/v1/templates/{id}", templates.HandleDelete)
	r.Post("/v1/templates/{id}/compose", templates.HandleCompose)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) composeResult {
	t.Helper()
	var res composeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestComposeIOSWebview(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/messages/ios-webview", `{
		"body_text": "Confira sua fatura",
		"footer_text": "Lojas MM",
		"buttons": [{"type": "webview", "text": "Abrir", "url": "https://example.com/f"}]
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	res := decodeResult(t, w)
	im := res.Message.InteractiveMessage
	require.NotNil(t, im)
	require.Equal(t, "Confira sua fatura", im.Body.Text)
	require.NotNil(t, im.Footer)
	require.Equal(t, "Lojas MM", im.Footer.Text)

	flow := im.NativeFlowMessage
	require.NotNil(t, flow)
	require.Len(t, flow.Buttons, 1)
	require.Equal(t, wamsg.ButtonNameCTAURL, flow.Buttons[0].Name)
	require.Contains(t, flow.MessageParamsJSON, "tap_target_list")
	require.Empty(t, res.Proto)
}

func TestComposeInvalidJSON(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/messages/interactive", `{"body_text": `)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, decodeResult(t, w).Error)
}

func TestComposeMarkdown(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/messages/interactive", `{
		"body_text": "**Oferta** imperdível",
		"markup": "markdown"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	res := decodeResult(t, w)
	require.Equal(t, "*Oferta* imperdível", res.Message.InteractiveMessage.Body.Text)
}

func TestComposeUnknownMarkup(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/messages/interactive", `{
		"body_text": "Oi",
		"markup": "bbcode"
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decodeResult(t, w).Error, "unsupported markup")
}

func TestComposeRenderProto(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/messages/interactive", `{
		"body_text": "Oi",
		"render": "proto"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	res := decodeResult(t, w)
	require.NotEmpty(t, res.Proto)
	require.Contains(t, string(res.Proto), "interactiveMessage")
}

func TestComposeUnknownRender(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/messages/interactive", `{
		"body_text": "Oi",
		"render": "xml"
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decodeResult(t, w).Error, "unsupported render")
}

func TestComposeList(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/messages/list", `{
		"body_text": "Nossos setores",
		"button_text": "Ver setores",
		"sections": [{"title": "Setores", "rows": [{"id": "fin", "title": "Financeiro"}]}]
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	flow := decodeResult(t, w).Message.InteractiveMessage.NativeFlowMessage
	require.NotNil(t, flow)
	require.Len(t, flow.Buttons, 1)
	require.Equal(t, wamsg.ButtonNameSingleSelect, flow.Buttons[0].Name)
	require.Contains(t, flow.Buttons[0].ButtonParamsJSON, "Ver setores")
}

func TestComposeCarousel(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/messages/carousel", `{
		"body_text": "Ofertas",
		"cards": [{"body_text": "Card A"}, {"body_text": "Card B"}]
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	im := decodeResult(t, w).Message.InteractiveMessage
	require.Nil(t, im.NativeFlowMessage)
	require.NotNil(t, im.CarouselMessage)
	require.Len(t, im.CarouselMessage.Cards, 2)
	require.Equal(t, "Card A", im.CarouselMessage.Cards[0].Body.Text)
}

func TestComposeBodyTooLarge(t *testing.T) {
	t.Parallel()
	compose := server.NewComposeHandler(16)
	r := chi.NewRouter()
	r.Post("/compose", compose.HandleInteractive)

	w := doRequest(t, r, http.MethodPost, "/compose", `{"body_text": "`+strings.Repeat("a", 64)+`"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplateLifecycle(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/templates", `{
		"name": "fatura",
		"kind": "ios_webview",
		"params": {"body_text": "Oi", "buttons": [{"type": "webview", "text": "Abrir", "url": "https://example.com/f"}]}
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var tpl catalog.Template
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tpl))
	require.NotEmpty(t, tpl.ID)
	require.Equal(t, catalog.KindIOSWebview, tpl.Kind)
	require.False(t, tpl.CreatedAt.IsZero())

	w = doRequest(t, r, http.MethodGet, "/v1/templates/"+tpl.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/v1/templates", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []catalog.Template
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "fatura", list[0].Name)

	w = doRequest(t, r, http.MethodDelete, "/v1/templates/"+tpl.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, r, http.MethodGet, "/v1/templates/"+tpl.ID, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTemplateCreateValidation(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "missing name", body: `{"kind": "list"}`, want: "name is required"},
		{name: "unknown kind", body: `{"name": "x", "kind": "sticker"}`, want: "unknown kind"},
		{name: "bad params", body: `{"name": "x", "kind": "list", "params": 42}`, want: "compose request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/v1/templates", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Contains(t, decodeResult(t, w).Error, tc.want)
		})
	}
}

func TestTemplateCompose(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/templates", `{
		"name": "fatura",
		"kind": "ios_webview",
		"params": {"body_text": "Oi", "footer_text": "Lojas MM"}
	}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var tpl catalog.Template
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tpl))

	w = doRequest(t, r, http.MethodPost, "/v1/templates/"+tpl.ID+"/compose", "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeResult(t, w)
	require.Equal(t, "Oi", res.Message.InteractiveMessage.Body.Text)
	require.Equal(t, "Lojas MM", res.Message.InteractiveMessage.Footer.Text)

	w = doRequest(t, r, http.MethodPost, "/v1/templates/"+tpl.ID+"/compose", `{"body_text": "Novo corpo", "render": "proto"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = decodeResult(t, w)
	require.Equal(t, "Novo corpo", res.Message.InteractiveMessage.Body.Text)
	require.NotEmpty(t, res.Proto)
}

func TestTemplateComposeNotFound(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	w := doRequest(t, r, http.MethodPost, "/v1/templates/nope/compose", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
