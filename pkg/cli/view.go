package cli

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mchmarny/cardiocheck/pkg/data"
	"github.com/mchmarny/cardiocheck/pkg/patient"
	"github.com/mchmarny/cardiocheck/pkg/predict"
)

const (
	msgInferenceFailed = "unable to compute result"
	dateFormat         = "January 02, 2006"
)

type formField struct {
	Name    string
	Label   string
	Value   string
	Type    string
	Min     string
	Max     string
	Step    string
	Options []patient.Option
}

func numberField(name, label, value string, lo, hi float64, step string) formField {
	return formField{
		Name:  name,
		Label: label,
		Value: value,
		Type:  "number",
		Min:   strconv.FormatFloat(lo, 'f', -1, 64),
		Max:   strconv.FormatFloat(hi, 'f', -1, 64),
		Step:  step,
	}
}

func selectField(name, label, value string) formField {
	return formField{
		Name:    name,
		Label:   label,
		Value:   value,
		Options: patient.Choices()[name],
	}
}

// formColumns lays the form out in two columns.
func formColumns(v url.Values) [][]formField {
	return [][]formField{
		{
			{Name: patient.FieldName, Label: "Patient name", Value: v.Get(patient.FieldName), Type: "text"},
			numberField(patient.FieldAge, "Age", v.Get(patient.FieldAge), patient.AgeMin, patient.AgeMax, "1"),
			selectField(patient.FieldSex, "Sex", v.Get(patient.FieldSex)),
			selectField(patient.FieldChestPainType, "Chest Pain Type", v.Get(patient.FieldChestPainType)),
			numberField(patient.FieldRestingBP, "Resting Blood Pressure (mm Hg)", v.Get(patient.FieldRestingBP), patient.RestingBPMin, patient.RestingBPMax, "1"),
			numberField(patient.FieldCholesterol, "Cholesterol Level (mg/dl)", v.Get(patient.FieldCholesterol), patient.CholesterolMin, patient.CholesterolMax, "1"),
			selectField(patient.FieldFastingBloodSugar, "Fasting Blood Sugar > 120 mg/dl", v.Get(patient.FieldFastingBloodSugar)),
		},
		{
			selectField(patient.FieldRestingECG, "Resting ECG Results", v.Get(patient.FieldRestingECG)),
			numberField(patient.FieldMaxHeartRate, "Maximum Heart Rate Achieved", v.Get(patient.FieldMaxHeartRate), patient.MaxHeartRateMin, patient.MaxHeartRateMax, "1"),
			selectField(patient.FieldExerciseAngina, "Exercise Induced Angina", v.Get(patient.FieldExerciseAngina)),
			numberField(patient.FieldSTDepression, "ST Depression Induced by Exercise", v.Get(patient.FieldSTDepression), patient.STDepressionMin, patient.STDepressionMax, "0.1"),
			selectField(patient.FieldSTSlope, "Slope of the Peak Exercise ST Segment", v.Get(patient.FieldSTSlope)),
			selectField(patient.FieldMajorVessels, "Number of Major Vessels Colored by Fluoroscopy", v.Get(patient.FieldMajorVessels)),
			selectField(patient.FieldThalassemia, "Thalassemia", v.Get(patient.FieldThalassemia)),
		},
	}
}

func (s *server) pageData(v url.Values) map[string]any {
	return map[string]any{
		"version":    version,
		"commit":     commit,
		"build_date": date,
		"today":      time.Now().Format(dateFormat),
		"model":      s.predictor.Model(),
		"columns":    formColumns(v),
	}
}

func (s *server) render(w http.ResponseWriter, status int, name string, d map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, d); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
	}
}

func faviconHandler(w http.ResponseWriter, r *http.Request) {
	file, err := embedFS.ReadFile("assets/img/favicon.svg")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err = w.Write(file); err != nil {
		slog.Error("failed to write favicon", "error", err)
	}
}

func (s *server) homeViewHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "home", s.pageData(patient.Default().Values()))
}

func (s *server) predictViewHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, serverMaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	d := s.pageData(r.PostForm)

	in, err := patient.ParseForm(r.PostForm)
	if err == nil {
		var res *predict.Result
		res, err = s.predictor.Predict(r.Context(), in)
		if err == nil {
			s.recordVerdict(res.Verdict)
			d["result"] = res
			s.render(w, http.StatusOK, "home", d)
			return
		}
	}

	if patient.IsInvalid(err) {
		slog.Debug("submission rejected", "error", err)
		d["err"] = err.Error()
		s.render(w, http.StatusBadRequest, "home", d)
		return
	}

	slog.Error("prediction failed", "error", err)
	d["err"] = msgInferenceFailed
	s.render(w, http.StatusInternalServerError, "home", d)
}

// recordVerdict adds the verdict to the tally when one is configured. A tally
// failure is logged and does not affect the submission.
func (s *server) recordVerdict(v predict.Verdict) {
	if s.db == nil {
		return
	}
	if err := data.SaveVerdict(s.db, s.predictor.Model(), string(v), time.Now()); err != nil {
		slog.Warn("failed to record verdict", "error", err)
	}
}
