package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mchmarny/cardiocheck/pkg/data"
	"github.com/mchmarny/cardiocheck/pkg/model"
	"github.com/mchmarny/cardiocheck/pkg/patient"
	"github.com/mchmarny/cardiocheck/pkg/predict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingClassifier struct{}

func (failingClassifier) Name() string { return "failing" }

func (failingClassifier) Predict(context.Context, patient.Vector) (int, error) {
	return 0, errors.New("model exploded")
}

func testServer(t *testing.T, c model.Classifier, withDB bool) (*server, http.Handler) {
	t.Helper()
	if c == nil {
		a, err := model.Decode([]byte(thalModel), ".yaml")
		require.NoError(t, err)
		c, err = model.New(context.Background(), a, model.Options{})
		require.NoError(t, err)
	}
	p, err := predict.New(c)
	require.NoError(t, err)

	s := newServer(p, nil)
	if withDB {
		path := filepath.Join(t.TempDir(), "tally.db")
		require.NoError(t, data.Init(path))
		db, err := data.GetDB(path)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		s.db = db
	}
	return s, makeRouter(s)
}

func scenarioForm() url.Values {
	return url.Values{
		patient.FieldName:              {"Jane"},
		patient.FieldAge:               {"63"},
		patient.FieldSex:               {"Male"},
		patient.FieldChestPainType:     {"TypicalAngina"},
		patient.FieldRestingBP:         {"145"},
		patient.FieldCholesterol:       {"233"},
		patient.FieldFastingBloodSugar: {"true"},
		patient.FieldRestingECG:        {"Normal"},
		patient.FieldMaxHeartRate:      {"150"},
		patient.FieldExerciseAngina:    {"No"},
		patient.FieldSTDepression:      {"2.3"},
		patient.FieldSTSlope:           {"Downsloping"},
		patient.FieldMajorVessels:      {"0"},
		patient.FieldThalassemia:       {"FixedDefect"},
	}
}

func postForm(h http.Handler, v url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHomeView(t *testing.T) {
	_, h := testServer(t, nil, false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="age" type="number" value="25"`)
	assert.Contains(t, body, `<option value="Normal" selected>Normal</option>`)
	assert.Contains(t, body, "Get Heart Disease Test Result")
	assert.Contains(t, body, "thal-test")
	assert.NotContains(t, body, `id="result"`)
}

func TestPredictView_Disease(t *testing.T) {
	_, h := testServer(t, nil, false)

	rec := postForm(h, scenarioForm())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Dear Jane, heart disease detected.")
	assert.Contains(t, body, "cardiologist")
	assert.Contains(t, body, "Heart Health Tips")
	assert.Contains(t, body, `<option value="FixedDefect" selected>`)
}

func TestPredictView_NoDisease(t *testing.T) {
	_, h := testServer(t, nil, false)

	f := scenarioForm()
	f.Set(patient.FieldThalassemia, "Normal")
	rec := postForm(h, f)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dear Jane, no heart disease detected.")
}

func TestPredictView_Invalid(t *testing.T) {
	_, h := testServer(t, nil, false)

	tests := []struct {
		field string
		value string
	}{
		{patient.FieldAge, "0"},
		{patient.FieldAge, "old"},
		{patient.FieldSex, "Robot"},
		{patient.FieldMajorVessels, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := scenarioForm()
			f.Set(tt.field, tt.value)
			rec := postForm(h, f)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `id="error"`)
			assert.NotContains(t, rec.Body.String(), `id="result"`)
		})
	}
}

func TestPredictView_InferenceError(t *testing.T) {
	_, h := testServer(t, failingClassifier{}, false)

	rec := postForm(h, scenarioForm())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInferenceFailed)
	assert.NotContains(t, rec.Body.String(), "model exploded")
}

func postJSON(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const scenarioJSON = `{"name": "Jane", "age": 63, "sex": "Male", "chest_pain_type": "Typical Angina",
  "resting_bp": 145, "cholesterol": 233, "fasting_blood_sugar_high": true, "resting_ecg": "Normal",
  "max_heart_rate": 150, "exercise_angina": "No", "st_depression": 2.3, "st_slope": "Downsloping",
  "major_vessels": 0, "thalassemia": "Fixed Defect"}`

func TestPredictAPI(t *testing.T) {
	_, h := testServer(t, nil, false)

	rec := postJSON(h, scenarioJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	var res predict.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, predict.DiseaseDetected, res.Verdict)
	assert.Equal(t, 1, res.Prediction)
	assert.Equal(t, []float64{63, 1, 0, 145, 233, 1, 0, 150, 0, 2.3, 2, 0, 2}, res.Features)
	assert.Len(t, res.Tips, 5)
}

func TestPredictAPI_Errors(t *testing.T) {
	_, h := testServer(t, nil, false)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", "{"},
		{"unknown field", `{"weight": 80}`},
		{"invalid category", strings.Replace(scenarioJSON, `"Male"`, `"Robot"`, 1)},
		{"out of range", strings.Replace(scenarioJSON, `"age": 63`, `"age": 130`, 1)},
		{"vessels not in set", strings.Replace(scenarioJSON, `"major_vessels": 0`, `"major_vessels": 5`, 1)},
		{"null field", strings.Replace(scenarioJSON, `"cholesterol": 233`, `"cholesterol": null`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestPredictAPI_MissingFields(t *testing.T) {
	_, h := testServer(t, nil, false)

	rec := postJSON(h, `{"age": 63, "sex": "Male", "chest_pain_type": "TypicalAngina", "resting_ecg": "Normal",
	  "exercise_angina": "No", "st_slope": "Downsloping", "thalassemia": "FixedDefect"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "missing field")
	for _, key := range []string{"resting_bp", "cholesterol", "fasting_blood_sugar_high",
		"max_heart_rate", "st_depression", "major_vessels"} {
		assert.Contains(t, body["error"], key)
	}
}

func TestPredictAPI_VesselsCategory(t *testing.T) {
	_, h := testServer(t, nil, false)

	rec := postJSON(h, strings.Replace(scenarioJSON, `"major_vessels": 0`, `"major_vessels": 4`, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), patient.ErrInvalidCategory.Error())

	f := scenarioForm()
	f.Set(patient.FieldMajorVessels, "4")
	form := postForm(h, f)
	require.Equal(t, http.StatusBadRequest, form.Code)
	assert.Contains(t, form.Body.String(), patient.ErrInvalidCategory.Error())
}

func TestPredictAPI_RoundsSTDepression(t *testing.T) {
	_, h := testServer(t, nil, false)

	rec := postJSON(h, strings.Replace(scenarioJSON, `"st_depression": 2.3`, `"st_depression": 2.34`, 1))
	require.Equal(t, http.StatusOK, rec.Code)

	var res predict.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, []float64{63, 1, 0, 145, 233, 1, 0, 150, 0, 2.3, 2, 0, 2}, res.Features)
}

func TestPredictAPI_InferenceError(t *testing.T) {
	_, h := testServer(t, failingClassifier{}, false)

	rec := postJSON(h, scenarioJSON)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInferenceFailed)
}

func TestSummaryAPI_Tally(t *testing.T) {
	_, h := testServer(t, nil, true)

	require.Equal(t, http.StatusOK, postJSON(h, scenarioJSON).Code)
	require.Equal(t, http.StatusOK, postForm(h, scenarioForm()).Code)
	f := scenarioForm()
	f.Set(patient.FieldThalassemia, "Normal")
	require.Equal(t, http.StatusOK, postForm(h, f).Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sum data.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sum))
	assert.Equal(t, int64(3), sum.Total)
	assert.Equal(t, int64(2), sum.Counts[string(predict.DiseaseDetected)])
	assert.Equal(t, int64(1), sum.Counts[string(predict.NoDiseaseDetected)])
}

func TestSummaryAPI_NoTally(t *testing.T) {
	_, h := testServer(t, nil, false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sum data.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sum))
	assert.Zero(t, sum.Total)
}

func TestSummaryAPI_BadDays(t *testing.T) {
	_, h := testServer(t, nil, false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary?d=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaticAndHealth(t *testing.T) {
	_, h := testServer(t, nil, false)

	for _, path := range []string{"/favicon.ico", "/static/css/app.css", "/healthz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestStaticServesAssetsOnly(t *testing.T) {
	_, h := testServer(t, nil, false)

	for _, path := range []string{"/static/templates/home.html", "/static/assets/css/app.css"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "define")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := testServer(t, nil, false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predict", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
