package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clifton/pkg/compare"
	"clifton/pkg/schema"
	"clifton/pkg/store"
	"clifton/pkg/strengths"
)

var (
	anaStrengths = []string{"Woo", "Achiever", "Learner", "Focus", "Input"}
	benStrengths = []string{"Harmony", "Belief", "Command", "Context", "Empathy"}
)

type fakeComparer struct {
	mu          sync.Mutex
	calls       int
	regenerated int
	last        [2]strengths.Profile
	err         error
}

func (f *fakeComparer) Compare(ctx context.Context, a, b strengths.Profile) (*compare.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = [2]strengths.Profile{a, b}
	if f.err != nil {
		return nil, f.err
	}
	return &compare.Result{
		ID:      "test",
		Person1: a,
		Person2: b,
		Comparison: schema.Comparison{
			Conflicts:     "They may clash on pace.",
			Collaboration: "Pair on planning.",
			Communication: "Lead with context.",
		},
	}, nil
}

func (f *fakeComparer) Regenerate(ctx context.Context, a, b strengths.Profile) (*compare.Result, error) {
	f.mu.Lock()
	f.regenerated++
	f.mu.Unlock()
	return f.Compare(ctx, a, b)
}

func newTestServer(t *testing.T, password string) (*Server, *fakeComparer) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "people.json"))
	fc := &fakeComparer{}
	return NewServer(st, fc, password), fc
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, s *Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, s, req)
}

func jsonRequest(method, target string, body any) *http.Request {
	var r *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = strings.NewReader(string(b))
	} else {
		r = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func panelForm(form url.Values, n int, selection, name string, picks []string) {
	p := func(f string) string { return field(n, f) }
	form.Set(p("selection"), selection)
	form.Set(p("last"), selection)
	form.Set(p("name"), name)
	for i, s := range picks {
		form.Set(p("s"+string(rune('0'+i))), s)
	}
}

func TestGetForm(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Person 1 (Me)")
	assert.Contains(t, body, "Person 2")
	assert.Contains(t, body, AddNew)
	assert.Contains(t, body, strengths.Placeholder)
	assert.Contains(t, body, `<option value="Woo" >Woo</option>`)
}

func TestForm_UnreadableStoreNotice(t *testing.T) {
	s, _ := newTestServer(t, "")
	require.NoError(t, os.WriteFile(s.Store.Path(), []byte("{not json"), 0o644))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), unreadableMessage)

	form := url.Values{}
	panelForm(form, 1, "", "Ana", anaStrengths)
	form.Set("do", "save1")
	rec = postForm(t, s, form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), unreadableMessage)

	raw, err := os.ReadFile(s.Store.Path())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestForm_ReadableStoreHasNoNotice(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, rec.Body.String(), unreadableMessage)
}

func TestForm_SaveAndSelect(t *testing.T) {
	s, _ := newTestServer(t, "")

	form := url.Values{}
	panelForm(form, 1, "", "  Ana ", anaStrengths)
	form.Set("do", "save1")
	rec := postForm(t, s, form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ana saved successfully!")
	assert.Contains(t, rec.Body.String(), `<option value="Ana" selected>`)

	saved, ok := s.Store.Get("Ana")
	require.True(t, ok)
	assert.Equal(t, anaStrengths, saved)

	// panel 2 switches from a new person to Ana; her strengths are loaded
	form = url.Values{}
	form.Set(field(2, "selection"), "Ana")
	form.Set(field(2, "last"), "")
	v := s.parseViewState(form)
	assert.Equal(t, "Ana", v.Panels[1].Name)
	assert.Equal(t, anaStrengths, v.Panels[1].Strengths[:])
}

func TestForm_SelectionChangeClearsStrengths(t *testing.T) {
	s, _ := newTestServer(t, "")
	require.True(t, s.Store.Save("Ana", anaStrengths))

	form := url.Values{}
	form.Set(field(1, "selection"), "")
	form.Set(field(1, "last"), "Ana")
	for i, v := range anaStrengths {
		form.Set(field(1, "s"+string(rune('0'+i))), v)
	}
	v := s.parseViewState(form)
	assert.Equal(t, [strengths.Size]string{}, v.Panels[0].Strengths)
	assert.Empty(t, v.Panels[0].Name)
}

func TestForm_UnknownSelectionFallsBackToNew(t *testing.T) {
	s, _ := newTestServer(t, "")
	form := url.Values{}
	form.Set(field(1, "selection"), "Ghost")
	form.Set(field(1, "last"), "Ghost")
	v := s.parseViewState(form)
	assert.Empty(t, v.Panels[0].Selection)
}

func TestForm_SaveUpdateReportsChanges(t *testing.T) {
	s, _ := newTestServer(t, "")
	require.True(t, s.Store.Save("Ana", anaStrengths))

	changed := []string{"Woo", "Achiever", "Learner", "Focus", "Belief"}
	form := url.Values{}
	panelForm(form, 1, "Ana", "", changed)

	v := s.parseViewState(form)
	s.apply(context.Background(), v, "save1")

	require.Len(t, v.Notices, 2)
	changes, ok := strings.CutPrefix(v.Notices[1], "Changes for Ana: ")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"-Input", "+Belief"}, strings.Split(changes, ", "))
	saved, _ := s.Store.Get("Ana")
	assert.Equal(t, changed, saved)
}

func TestForm_SaveValidation(t *testing.T) {
	s, _ := newTestServer(t, "")

	tests := []struct {
		name  string
		who   string
		picks []string
		want  string
	}{
		{"missing name", " ", anaStrengths, "Person 1: Please enter a name before saving."},
		{"missing strength", "Ana", []string{"Woo", "", "Learner", "Focus", "Input"}, "Person 1: Please select all 5 strengths."},
		{"duplicate", "Ana", []string{"Woo", "Woo", "Learner", "Focus", "Input"}, "Person 1: Please select 5 different strengths (no duplicates)."},
		{"invalid", "Ana", []string{"Woo", "Bogus", "Learner", "Focus", "Input"}, "Person 1: Invalid strength(s): Bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			panelForm(form, 1, "", tt.who, tt.picks)
			form.Set("do", "save1")
			rec := postForm(t, s, form)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Empty(t, s.Store.Names())
		})
	}
}

func TestForm_Delete(t *testing.T) {
	s, _ := newTestServer(t, "")
	require.True(t, s.Store.Save("Ana", anaStrengths))

	form := url.Values{}
	panelForm(form, 1, "Ana", "", anaStrengths)
	panelForm(form, 2, "Ana", "", anaStrengths)
	form.Set("do", "delete1")

	v := s.parseViewState(form)
	s.apply(context.Background(), v, "delete1")

	assert.Contains(t, v.Notices, "✅ Ana deleted.")
	assert.Empty(t, s.Store.Names())
	assert.Empty(t, v.Panels[0].Selection)
	assert.Equal(t, [strengths.Size]string{}, v.Panels[0].Strengths)
	// the other panel no longer points at a deleted person
	assert.Empty(t, v.Panels[1].Selection)
	assert.Empty(t, v.Panels[1].LastSelection)
}

func TestForm_DeleteWithoutSelection(t *testing.T) {
	s, _ := newTestServer(t, "")
	v := newViewState(nil)
	s.apply(context.Background(), v, "delete2")
	assert.Equal(t, []string{"Person 2: select a saved person to delete."}, v.Errors)
}

func TestForm_Compare(t *testing.T) {
	s, fc := newTestServer(t, "")
	require.True(t, s.Store.Save("Ben", benStrengths))

	form := url.Values{}
	panelForm(form, 1, "", "Ana", anaStrengths)
	panelForm(form, 2, "Ben", "", benStrengths)
	form.Set("do", "compare")
	rec := postForm(t, s, form)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "What conflicts might we have?")
	assert.Contains(t, body, "They may clash on pace.")
	assert.Contains(t, body, "How can we work well together?")
	assert.Contains(t, body, "How should Ana speak to Ben?")
	assert.Contains(t, body, "Lead with context.")

	assert.Equal(t, 1, fc.calls)
	assert.Equal(t, strengths.Profile{Name: "Ana", Strengths: anaStrengths}, fc.last[0])
	assert.Equal(t, strengths.Profile{Name: "Ben", Strengths: benStrengths}, fc.last[1])
}

func TestForm_Regenerate(t *testing.T) {
	s, fc := newTestServer(t, "")
	form := url.Values{}
	panelForm(form, 1, "", "Ana", anaStrengths)
	panelForm(form, 2, "", "Ben", benStrengths)
	form.Set("do", "regenerate")
	postForm(t, s, form)
	assert.Equal(t, 1, fc.regenerated)
}

func TestForm_CompareValidation(t *testing.T) {
	s, fc := newTestServer(t, "")

	v := newViewState(nil)
	v.Panels[1].Name = "Ben"
	copy(v.Panels[1].Strengths[:], []string{"Harmony", "Harmony", "Command", "Context", "Empathy"})
	s.apply(context.Background(), v, "compare")

	assert.Equal(t, []string{
		"Please enter a name for Person 1.",
		"Person 1: Please select all 5 strengths.",
		"Person 2: Please select 5 different strengths (no duplicates).",
	}, v.Errors)
	assert.Zero(t, fc.calls)
	assert.Nil(t, v.Result)
}

func TestForm_CompareErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
		tip  string
	}{
		{
			name: "configuration",
			err:  &compare.ConfigError{Key: "OPENAI_API_KEY", Err: errors.New("secret not configured")},
			want: "Configuration Error",
			tip:  "OPENAI_API_KEY=your_key_here",
		},
		{
			name: "comparison",
			err:  errors.Join(compare.ErrComparison, errors.New("timeout")),
			want: "Error: comparison failed",
			tip:  "check your internet connection",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fc := newTestServer(t, "")
			fc.err = tt.err

			v := newViewState(nil)
			v.Panels[0].Name = "Ana"
			copy(v.Panels[0].Strengths[:], anaStrengths)
			v.Panels[1].Name = "Ben"
			copy(v.Panels[1].Strengths[:], benStrengths)
			s.apply(context.Background(), v, "compare")

			require.Len(t, v.Errors, 1)
			assert.Contains(t, v.Errors[0], tt.want)
			require.Len(t, v.Tips, 1)
			assert.Contains(t, v.Tips[0], tt.tip)
			assert.Nil(t, v.Result)
		})
	}
}

func TestAPI_Status(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAPI_Strengths(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/strengths", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Strengths []string `json:"strengths"`
		Count     int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 34, body.Count)
	assert.Equal(t, strengths.Catalog, body.Strengths)
}

func TestAPI_PeopleLifecycle(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/people", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"missing"`)

	rec = do(t, s, jsonRequest(http.MethodPut, "/api/people/Ana", putPersonReq{Strengths: anaStrengths}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":true`)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/people/Ana", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var p strengths.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, strengths.Profile{Name: "Ana", Strengths: anaStrengths}, p)

	rec = do(t, s, jsonRequest(http.MethodPut, "/api/people/Ana", putPersonReq{Strengths: benStrengths}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":false`)

	rec = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/people/Ana", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/people/Ana", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/people/Ana", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_PersonNameDecodedOnce(t *testing.T) {
	s, _ := newTestServer(t, "")
	require.True(t, s.Store.Save("100%41", anaStrengths))
	require.True(t, s.Store.Save("Ana Lee", benStrengths))
	require.True(t, s.Store.Save("A/B", benStrengths))

	tests := []struct {
		target string
		want   string
	}{
		{"/api/people/100%2541", "100%41"},
		{"/api/people/Ana%20Lee", "Ana Lee"},
		{"/api/people/A%2FB", "A/B"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			rec := do(t, s, httptest.NewRequest(http.MethodGet, tt.target, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			var p strengths.Profile
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Equal(t, tt.want, p.Name)
		})
	}

	rec := do(t, s, httptest.NewRequest(http.MethodDelete, "/api/people/100%2541", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := s.Store.Get("100%41")
	assert.False(t, ok)
}

func TestAPI_PutInvalid(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(t, s, jsonRequest(http.MethodPut, "/api/people/Ana", putPersonReq{Strengths: []string{"Woo"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please select exactly 5 strengths.")
	assert.Empty(t, s.Store.Names())
}

func TestAPI_Compare(t *testing.T) {
	s, fc := newTestServer(t, "")
	require.True(t, s.Store.Save("Ben", benStrengths))

	rec := do(t, s, jsonRequest(http.MethodPost, "/api/compare", compareReq{
		Person1: strengths.Profile{Name: "Ana", Strengths: anaStrengths},
		Person2: strengths.Profile{Name: "Ben"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	var res compare.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "They may clash on pace.", res.Conflicts)
	assert.Equal(t, benStrengths, fc.last[1].Strengths)
}

func TestAPI_CompareStatusCodes(t *testing.T) {
	body := compareReq{
		Person1: strengths.Profile{Name: "Ana", Strengths: anaStrengths},
		Person2: strengths.Profile{Name: "Ben", Strengths: benStrengths},
	}

	s, fc := newTestServer(t, "")
	fc.err = &compare.ConfigError{Key: "OPENAI_API_KEY", Err: errors.New("missing")}
	rec := do(t, s, jsonRequest(http.MethodPost, "/api/compare", body))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	fc.err = errors.Join(compare.ErrComparison, errors.New("boom"))
	rec = do(t, s, jsonRequest(http.MethodPost, "/api/compare", body))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = do(t, s, jsonRequest(http.MethodPost, "/api/compare", compareReq{Person1: body.Person1}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a name for Person 2.")
}

func TestPasswordGate(t *testing.T) {
	s, _ := newTestServer(t, "secret")

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("me:wrong")))
	rec = do(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("me", "secret")
	rec = do(t, s, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
