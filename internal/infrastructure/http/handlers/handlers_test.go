package handlers

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/internal/domain/cart"
	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/recipe"
	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/internal/infrastructure/http/middleware"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testClaims = &inbound.SessionClaims{SessionID: "sess-1", User: user.Identity{UID: "uid-1", Email: "cook@example.com"}}

type result struct {
	Code    int
	Header  http.Header
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code errors.ErrorCode `json:"code"`
	} `json:"error"`
}

// call routes one request through a chi router registered at pattern
func call(t *testing.T, method, pattern, target string, body io.Reader, h http.HandlerFunc, signedIn bool) result {
	t.Helper()
	r := chi.NewRouter()
	if signedIn {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithClaims(req.Context(), testClaims)))
			})
		})
	}
	r.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	res := result{Code: rec.Code, Header: rec.Header()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	}
	return res
}

func errorCode(res result) errors.ErrorCode {
	if res.Error == nil {
		return ""
	}
	return res.Error.Code
}

func TestInventoryHandlers(t *testing.T) {
	inv := &mockInventory{}
	usageSvc := &mockUsage{}
	h := NewInventoryHandlers(inv, usageSvc, zaptest.NewLogger(t))

	rice := inventory.Item{ID: "1", Name: "Rice", Category: "Grains", Weight: 850}

	inv.On("Query", inventory.Filter{Search: "ric", Category: "Grains"}).
		Return(&inbound.InventoryView{Items: []inventory.Item{rice}}, nil).Once()
	res := call(t, http.MethodGet, "/inventory", "/inventory?search=+ric+&category=Grains", nil, h.List, true)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Data), `"Rice"`)

	inv.On("Query", inventory.Filter{}).Return(nil, errors.NewFeedError("No data available", nil)).Once()
	res = call(t, http.MethodGet, "/inventory", "/inventory", nil, h.List, true)
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
	assert.Equal(t, "No data available", res.Message)

	inv.On("Categories").Return([]string{"All", "Grains"}, nil)
	res = call(t, http.MethodGet, "/inventory/categories", "/inventory/categories", nil, h.Categories, true)
	assert.JSONEq(t, `["All","Grains"]`, string(res.Data))

	inv.On("LowStock").Return(nil, nil)
	res = call(t, http.MethodGet, "/inventory/low-stock", "/inventory/low-stock", nil, h.LowStock, true)
	assert.JSONEq(t, `[]`, string(res.Data))

	inv.On("Item", "1").Return(rice, nil)
	inv.On("Item", "99").Return(inventory.Item{}, errors.NewNotFoundError(errors.CodeItemNotFound, "Item not found", "99"))
	res = call(t, http.MethodGet, "/inventory/{id}", "/inventory/1", nil, h.Get, true)
	assert.Equal(t, http.StatusOK, res.Code)
	res = call(t, http.MethodGet, "/inventory/{id}", "/inventory/99", nil, h.Get, true)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, errors.CodeItemNotFound, errorCode(res))

	usageSvc.On("Estimate", mock.Anything, "1").Return(&inbound.UsageReport{Item: rice, Source: "mock"}, nil)
	res = call(t, http.MethodGet, "/inventory/{id}/usage", "/inventory/1/usage", nil, h.Usage, true)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Data), `"source":"mock"`)
}

func TestInventoryHandlers_Threshold(t *testing.T) {
	inv := &mockInventory{}
	h := NewInventoryHandlers(inv, &mockUsage{}, zaptest.NewLogger(t))

	inv.On("ValidateThreshold", "1", "250").Return(&inbound.ThresholdCheck{ItemID: "1", Threshold: 250}, nil).Twice()
	inv.On("ValidateThreshold", "1", "abc").Return(nil, errors.NewValidationError("threshold must be a positive whole number"))

	for _, body := range []string{`{"threshold":250}`, `{"threshold":"250"}`} {
		res := call(t, http.MethodPost, "/inventory/{id}/threshold", "/inventory/1/threshold", strings.NewReader(body), h.Threshold, true)
		assert.Equal(t, http.StatusOK, res.Code, body)
		assert.JSONEq(t, `{"itemId":"1","threshold":250,"applied":false}`, string(res.Data))
	}

	res := call(t, http.MethodPost, "/inventory/{id}/threshold", "/inventory/1/threshold", strings.NewReader(`{"threshold":"abc"}`), h.Threshold, true)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, errors.CodeValidationFailed, errorCode(res))

	res = call(t, http.MethodPost, "/inventory/{id}/threshold", "/inventory/1/threshold", strings.NewReader(`{"limit":1}`), h.Threshold, true)
	assert.Equal(t, http.StatusBadRequest, res.Code, "unknown fields are rejected")
	inv.AssertExpectations(t)
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	h := NewRecipeHandlers(&mockRecipes{}, zaptest.NewLogger(t))
	big := `{"mood":"` + strings.Repeat("a", maxJSONBody) + `"}`

	res := call(t, http.MethodPost, "/recipes/suggestion", "/recipes/suggestion", strings.NewReader(big), h.Suggest, true)
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.Code)
}

func TestCartHandlers(t *testing.T) {
	shop := &mockShopping{}
	h := NewCartHandlers(shop, zaptest.NewLogger(t))
	view := &inbound.CartView{Selections: map[string]int{"3": 2}, Total: "20.00"}

	shop.On("Cart", mock.Anything, "uid-1").Return(view, nil)
	shop.On("Increment", mock.Anything, "uid-1", "3").Return(view, nil)
	shop.On("Decrement", mock.Anything, "uid-1", "3").Return(view, nil)
	shop.On("Add", mock.Anything, "uid-1", "3").Return(view, nil)
	shop.On("Remove", mock.Anything, "uid-1", "3").Return(view, nil)
	shop.On("Add", mock.Anything, "uid-1", "42").Return(nil, errors.NewNotFoundError(errors.CodeItemNotFound, "Item not found", "42"))

	res := call(t, http.MethodGet, "/cart", "/cart", nil, h.Get, true)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Data), `"total":"20.00"`)

	for pattern, fn := range map[string]http.HandlerFunc{
		"/cart/items/{id}/increment": h.Increment,
		"/cart/items/{id}/decrement": h.Decrement,
		"/cart/items/{id}":           h.Add,
	} {
		target := strings.Replace(pattern, "{id}", "3", 1)
		res := call(t, http.MethodPost, pattern, target, nil, fn, true)
		assert.Equal(t, http.StatusOK, res.Code, pattern)
	}
	res = call(t, http.MethodDelete, "/cart/items/{id}", "/cart/items/3", nil, h.Remove, true)
	assert.Equal(t, http.StatusOK, res.Code)

	res = call(t, http.MethodPost, "/cart/items/{id}", "/cart/items/42", nil, h.Add, true)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = call(t, http.MethodGet, "/cart", "/cart", nil, h.Get, false)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	shop.AssertExpectations(t)
}

func TestCartHandlers_Checkout(t *testing.T) {
	shop := &mockShopping{}
	h := NewCartHandlers(shop, zaptest.NewLogger(t))

	zepto, _ := cart.LookupPartner("zepto")
	shop.On("Checkout", mock.Anything, "uid-1", "zepto").Return(&zepto, nil)
	shop.On("Checkout", mock.Anything, "uid-1", "amazon").
		Return(nil, errors.NewNotFoundError(errors.CodeUnknownPartner, "Unknown delivery partner", "amazon"))

	res := call(t, http.MethodGet, "/cart/checkout/{partner}", "/cart/checkout/zepto", nil, h.Checkout, true)
	assert.Equal(t, http.StatusFound, res.Code)
	assert.Equal(t, "https://www.zeptonow.com/", res.Header.Get("Location"))

	res = call(t, http.MethodGet, "/cart/checkout/{partner}", "/cart/checkout/amazon", nil, h.Checkout, true)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, errors.CodeUnknownPartner, errorCode(res))

	res = call(t, http.MethodGet, "/delivery/partners", "/delivery/partners", nil, h.Partners, false)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Data), "blinkit")
}

func TestRecipeHandlers(t *testing.T) {
	recipes := &mockRecipes{}
	h := NewRecipeHandlers(recipes, zaptest.NewLogger(t))

	batch := recipe.NewBatch(recipe.FallbackRecipes(), []string{"Rice"}, recipe.SourceFallback, recipe.MoodAll)
	recipes.On("Generate", mock.Anything, "uid-1", inbound.GenerateRecipesCommand{Mood: "spicy"}).Return(&batch, nil)
	recipes.On("Generate", mock.Anything, "uid-1", inbound.GenerateRecipesCommand{}).Return(&batch, nil)
	recipes.On("List", mock.Anything, "uid-1", inbound.RecipeQuery{Search: "curry", Mood: "quick"}).
		Return(&inbound.RecipeList{Total: 1}, nil)
	recipes.On("Get", mock.Anything, "uid-1", "missing").
		Return(nil, errors.NewNotFoundError(errors.CodeRecipeNotFound, "Recipe not found", "missing"))
	recipes.On("Suggest", mock.Anything, inbound.SuggestCommand{Mood: "comfort"}).
		Return(&inbound.Suggestion{Text: "Khichdi"}, nil)

	res := call(t, http.MethodPost, "/recipes/generate", "/recipes/generate", strings.NewReader(`{"mood":"spicy"}`), h.Generate, true)
	assert.Equal(t, http.StatusOK, res.Code)

	res = call(t, http.MethodPost, "/recipes/generate", "/recipes/generate", nil, h.Generate, true)
	assert.Equal(t, http.StatusOK, res.Code, "an empty body generates without a mood")

	res = call(t, http.MethodGet, "/recipes", "/recipes?search=curry&mood=quick", nil, h.List, true)
	assert.Contains(t, string(res.Data), `"total":1`)

	res = call(t, http.MethodGet, "/recipes/{id}", "/recipes/missing", nil, h.Get, true)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, errors.CodeRecipeNotFound, errorCode(res))

	res = call(t, http.MethodPost, "/recipes/suggestion", "/recipes/suggestion", strings.NewReader(`{"mood":"comfort"}`), h.Suggest, true)
	assert.Contains(t, string(res.Data), "Khichdi")

	res = call(t, http.MethodPost, "/recipes/generate", "/recipes/generate", strings.NewReader(`{"mood":`), h.Generate, true)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	recipes.AssertExpectations(t)
}

func TestAuthHandlers(t *testing.T) {
	auth := &mockAuth{}
	h := NewAuthHandlers(auth, zaptest.NewLogger(t))
	creds := user.Credentials{Email: "cook@example.com", Password: "secret1"}
	session := &inbound.Session{Token: "tok", User: testClaims.User}

	auth.On("SignUp", mock.Anything, creds).Return(session, nil)
	auth.On("SignIn", mock.Anything, creds).Return(session, nil)
	auth.On("SignIn", mock.Anything, user.Credentials{Email: "cook@example.com", Password: "nope123"}).
		Return(nil, errors.NewAuthError("Invalid email or password", nil))
	auth.On("SignOut", mock.Anything, testClaims).Return(nil)

	body, _ := json.Marshal(creds)
	res := call(t, http.MethodPost, "/auth/signup", "/auth/signup", bytes.NewReader(body), h.SignUp, false)
	assert.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, "Account created", res.Message)

	res = call(t, http.MethodPost, "/auth/signin", "/auth/signin", bytes.NewReader(body), h.SignIn, false)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Data), `"token":"tok"`)

	res = call(t, http.MethodPost, "/auth/signin", "/auth/signin",
		strings.NewReader(`{"email":"cook@example.com","password":"nope123"}`), h.SignIn, false)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "Invalid email or password", res.Message)

	res = call(t, http.MethodPost, "/auth/signout", "/auth/signout", nil, h.SignOut, true)
	assert.Equal(t, http.StatusOK, res.Code)

	res = call(t, http.MethodGet, "/auth/me", "/auth/me", nil, h.Me, true)
	assert.Contains(t, string(res.Data), `"uid":"uid-1"`)

	res = call(t, http.MethodGet, "/auth/me", "/auth/me", nil, h.Me, false)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	auth.AssertExpectations(t)
}

func TestPreferenceHandlers_UpdateMergesFields(t *testing.T) {
	prefs := &mockPreferences{}
	h := NewPreferenceHandlers(prefs, zaptest.NewLogger(t))

	current := user.DefaultPreferences()
	merged := current
	merged.DarkMode = true

	prefs.On("Get", mock.Anything, "uid-1").Return(&current, nil)
	prefs.On("Update", mock.Anything, "uid-1", merged).Return(&merged, nil)

	res := call(t, http.MethodGet, "/preferences", "/preferences", nil, h.Get, true)
	assert.Contains(t, string(res.Data), `"defaultGrocery":"zepto"`)

	res = call(t, http.MethodPut, "/preferences", "/preferences", strings.NewReader(`{"darkMode":true}`), h.Update, true)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Data), `"darkMode":true`)
	assert.Contains(t, string(res.Data), `"notifications":true`)
	prefs.AssertExpectations(t)
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, h *CaptureHandlers, body io.Reader, contentType string) result {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/captures", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	res := result{Code: rec.Code}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestCaptureHandlers_Upload(t *testing.T) {
	captures := &mockCaptures{}
	h := NewCaptureHandlers(captures, zaptest.NewLogger(t))

	stored := &capture.Capture{ID: "c1", Filename: "shelf.jpg", URL: "https://cdn.example.test/captures/c1.jpg"}
	captures.On("Upload", mock.Anything, "shelf.jpg", int64(4), mock.Anything).Return(stored, nil)

	body, ct := multipartBody(t, "image", "shelf.jpg", []byte("jpeg"))
	res := upload(t, h, body, ct)
	assert.Equal(t, http.StatusCreated, res.Code)
	assert.Contains(t, string(res.Data), "captures/c1.jpg")

	body, ct = multipartBody(t, "", "", nil)
	res = upload(t, h, body, ct)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "No image file provided", res.Message)

	res = upload(t, h, strings.NewReader("plain"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, res.Code)

	captures.On("Upload", mock.Anything, "run.sh", mock.Anything, mock.Anything).
		Return(nil, errors.NewBadRequestError("File type not allowed"))
	body, ct = multipartBody(t, "image", "run.sh", []byte("#!"))
	res = upload(t, h, body, ct)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "File type not allowed", res.Message)
}

func TestCaptureHandlers_ListAndDelete(t *testing.T) {
	captures := &mockCaptures{}
	h := NewCaptureHandlers(captures, zaptest.NewLogger(t))

	captures.On("List", mock.Anything, 0).Return(nil, nil)
	captures.On("List", mock.Anything, 5).Return([]*capture.Capture{{ID: "c1"}}, nil)
	captures.On("Delete", mock.Anything, "c1").Return(nil)
	captures.On("Delete", mock.Anything, "gone").Return(errors.NewNotFoundError(errors.CodeCaptureNotFound, "Capture not found", "gone"))

	res := call(t, http.MethodGet, "/captures", "/captures", nil, h.List, true)
	assert.JSONEq(t, `[]`, string(res.Data))

	res = call(t, http.MethodGet, "/captures", "/captures?limit=5", nil, h.List, true)
	assert.Contains(t, string(res.Data), `"id":"c1"`)

	res = call(t, http.MethodGet, "/captures", "/captures?limit=-1", nil, h.List, true)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, errors.CodeValidationFailed, errorCode(res))

	res = call(t, http.MethodDelete, "/captures/{id}", "/captures/c1", nil, h.Delete, true)
	assert.Equal(t, http.StatusOK, res.Code)

	res = call(t, http.MethodDelete, "/captures/{id}", "/captures/gone", nil, h.Delete, true)
	assert.Equal(t, http.StatusNotFound, res.Code)
	captures.AssertExpectations(t)
}

func TestResponse_UnknownErrorIsHidden(t *testing.T) {
	inv := &mockInventory{}
	inv.On("Categories").Return(nil, stderrors.New("pq: password authentication failed"))
	h := NewInventoryHandlers(inv, &mockUsage{}, zaptest.NewLogger(t))

	res := call(t, http.MethodGet, "/inventory/categories", "/inventory/categories", nil, h.Categories, true)
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, errors.CodeInternal, errorCode(res))
	assert.NotContains(t, res.Message, "password")
}
