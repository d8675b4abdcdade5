package tools

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

type checkInteractionsArgs struct {
	Medications       []string `json:"medications" description:"List of current medications the user is taking" validate:"required"`
	NewMedication     string   `json:"new_medication,omitempty" description:"New medication to check for interactions"`
	Symptoms          []string `json:"symptoms,omitempty" description:"Current symptoms that might interact with medications"`
	MedicalConditions []string `json:"medical_conditions,omitempty" description:"Medical conditions such as diabetes or hypertension"`
}

type Interaction struct {
	Severity    string `json:"severity"`
	Medication1 string `json:"medication1"`
	Medication2 string `json:"medication2"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

type Warning struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

type InteractionAnalysis struct {
	Medications       []string `json:"medications"`
	NewMedication     string   `json:"new_medication,omitempty"`
	CategoriesPresent []string `json:"categories_present"`
	Symptoms          []string `json:"symptoms"`
	MedicalConditions []string `json:"medical_conditions"`
}

type InteractionSummary struct {
	TotalMedications      int    `json:"total_medications"`
	DangerousInteractions int    `json:"dangerous_interactions"`
	Warnings              int    `json:"warnings"`
	Recommendations       int    `json:"recommendations"`
	RiskLevel             string `json:"risk_level"`
}

type InteractionReport struct {
	Analysis        InteractionAnalysis `json:"analysis"`
	Interactions    []Interaction       `json:"interactions"`
	Warnings        []Warning           `json:"warnings"`
	Recommendations []string            `json:"recommendations"`
	Summary         InteractionSummary  `json:"summary"`
	Disclaimer      string              `json:"disclaimer"`
}

var dangerousInteractions = map[string][]string{
	"warfarin":    {"aspirin", "ibuprofen", "naproxen", "heparin", "clopidogrel"},
	"heparin":     {"aspirin", "ibuprofen", "naproxen", "warfarin"},
	"clopidogrel": {"omeprazole", "esomeprazole", "aspirin"},

	"lisinopril": {"potassium supplements", "spironolactone", "ibuprofen"},
	"amlodipine": {"simvastatin", "grapefruit"},
	"metoprolol": {"albuterol", "ibuprofen"},

	"metformin": {"furosemide", "corticosteroids", "iodinated contrast"},
	"insulin":   {"beta blockers", "thiazide diuretics", "corticosteroids"},

	"simvastatin":  {"amlodipine", "verapamil", "diltiazem", "grapefruit"},
	"atorvastatin": {"cyclosporine", "gemfibrozil", "grapefruit"},

	"ibuprofen": {"warfarin", "aspirin", "lisinopril", "furosemide", "lithium"},
	"naproxen":  {"warfarin", "aspirin", "lisinopril", "furosemide", "lithium"},
	"aspirin":   {"warfarin", "ibuprofen", "naproxen", "clopidogrel"},

	"sertraline": {"tramadol", "fentanyl", "warfarin", "aspirin"},
	"fluoxetine": {"tramadol", "fentanyl", "warfarin", "aspirin"},
	"lithium":    {"ibuprofen", "naproxen", "furosemide", "spironolactone"},

	"ciprofloxacin": {"caffeine", "warfarin", "theophylline"},
	"azithromycin":  {"digoxin", "warfarin"},

	"caffeine":      {"ciprofloxacin", "fluvoxamine"},
	"grapefruit":    {"simvastatin", "atorvastatin", "amlodipine", "felodipine"},
	"st-johns-wort": {"warfarin", "oral contraceptives", "antidepressants"},
}

const (
	categoryBloodThinners = "blood thinners"
	categoryBloodPressure = "blood pressure"
	categoryPainRelief    = "pain relief"
	categoryMentalHealth  = "mental health"
)

var medicationCategories = []struct {
	name  string
	drugs []string
}{
	{categoryBloodThinners, []string{"warfarin", "heparin", "clopidogrel", "apixaban", "rivaroxaban"}},
	{categoryBloodPressure, []string{"lisinopril", "amlodipine", "metoprolol", "losartan", "hydrochlorothiazide"}},
	{"diabetes", []string{"metformin", "insulin", "glipizide", "glyburide"}},
	{"cholesterol", []string{"simvastatin", "atorvastatin", "rosuvastatin", "ezetimibe"}},
	{categoryPainRelief, []string{"ibuprofen", "naproxen", "aspirin", "acetaminophen"}},
	{categoryMentalHealth, []string{"sertraline", "fluoxetine", "escitalopram", "lithium"}},
	{"antibiotics", []string{"ciprofloxacin", "azithromycin", "amoxicillin"}},
	{"supplements", []string{"caffeine", "grapefruit", "st-johns-wort", "vitamin e"}},
}

func interacts(a, b string) bool {
	return slices.Contains(dangerousInteractions[a], b)
}

func dangerous(first, second string) Interaction {
	return Interaction{
		Severity:    "dangerous",
		Medication1: first,
		Medication2: second,
		Description: fmt.Sprintf("Dangerous interaction between %s and %s", first, second),
		Action:      "STOP - Do not take together. Consult doctor immediately.",
	}
}

// categoriesOf lists the categories present in meds, in first-seen order.
func categoriesOf(meds []string) []string {
	var present []string
	for _, med := range meds {
		lower := strings.ToLower(med)
		for _, c := range medicationCategories {
			if slices.Contains(present, c.name) {
				continue
			}
			for _, drug := range c.drugs {
				if strings.Contains(lower, drug) {
					present = append(present, c.name)
					break
				}
			}
		}
	}
	if present == nil {
		present = []string{}
	}
	return present
}

func checkInteractions(in checkInteractionsArgs) *InteractionReport {
	interactions := []Interaction{}
	warnings := []Warning{}
	recommendations := []string{}

	if in.NewMedication != "" {
		newLower := strings.ToLower(in.NewMedication)
		for _, existing := range in.Medications {
			existingLower := strings.ToLower(existing)
			if interacts(newLower, existingLower) {
				interactions = append(interactions, dangerous(in.NewMedication, existing))
			}
			if interacts(existingLower, newLower) {
				interactions = append(interactions, dangerous(existing, in.NewMedication))
			}
		}
	}

	categories := categoriesOf(in.Medications)
	has := func(c string) bool { return slices.Contains(categories, c) }

	if has(categoryBloodThinners) && has(categoryPainRelief) {
		warnings = append(warnings, Warning{
			Type:           "bleeding_risk",
			Message:        "Increased bleeding risk with blood thinners and pain medications",
			Recommendation: "Use acetaminophen instead of ibuprofen/naproxen",
		})
	}
	if has(categoryBloodPressure) && has(categoryPainRelief) {
		warnings = append(warnings, Warning{
			Type:           "bp_interaction",
			Message:        "Pain medications may reduce effectiveness of blood pressure drugs",
			Recommendation: "Monitor blood pressure closely",
		})
	}
	if has(categoryMentalHealth) && has(categoryPainRelief) {
		warnings = append(warnings, Warning{
			Type:           "serotonin_syndrome",
			Message:        "Risk of serotonin syndrome with antidepressants and certain pain medications",
			Recommendation: "Avoid tramadol and fentanyl with SSRIs",
		})
	}

	for _, symptom := range in.Symptoms {
		s := strings.ToLower(symptom)
		if (strings.Contains(s, "nausea") || strings.Contains(s, "vomiting")) && anyContains(in.Medications, "metformin") {
			recommendations = append(recommendations, "Metformin can cause nausea - take with food")
		}
		if (strings.Contains(s, "dizziness") || strings.Contains(s, "lightheaded")) && anyContains(in.Medications, "blood pressure") {
			recommendations = append(recommendations, "Blood pressure medications may cause dizziness - change positions slowly")
		}
		if (strings.Contains(s, "bleeding") || strings.Contains(s, "bruising")) && has(categoryBloodThinners) {
			warnings = append(warnings, Warning{
				Type:           "bleeding",
				Message:        "Increased bleeding risk with blood thinners",
				Recommendation: "Contact doctor if bleeding is excessive",
			})
		}
	}

	for _, condition := range in.MedicalConditions {
		c := strings.ToLower(condition)
		if strings.Contains(c, "diabetes") && anyContains(in.Medications, "beta blocker") {
			recommendations = append(recommendations, "Beta blockers may mask low blood sugar symptoms")
		}
		if strings.Contains(c, "hypertension") && anyContains(in.Medications, "nsaid") {
			warnings = append(warnings, Warning{
				Type:           "bp_risk",
				Message:        "NSAIDs may increase blood pressure",
				Recommendation: "Monitor blood pressure regularly",
			})
		}
		if strings.Contains(c, "kidney disease") && anyContainsAny(in.Medications, []string{"ibuprofen", "naproxen"}) {
			warnings = append(warnings, Warning{
				Type:           "kidney_risk",
				Message:        "NSAIDs may worsen kidney function",
				Recommendation: "Use acetaminophen instead and consult doctor",
			})
		}
	}

	risk := "LOW"
	switch {
	case len(interactions) > 0:
		risk = "HIGH"
	case len(warnings) > 2:
		risk = "MODERATE"
	}

	return &InteractionReport{
		Analysis: InteractionAnalysis{
			Medications:       in.Medications,
			NewMedication:     in.NewMedication,
			CategoriesPresent: categories,
			Symptoms:          nonNil(in.Symptoms),
			MedicalConditions: nonNil(in.MedicalConditions),
		},
		Interactions:    interactions,
		Warnings:        warnings,
		Recommendations: recommendations,
		Summary: InteractionSummary{
			TotalMedications:      len(in.Medications),
			DangerousInteractions: len(interactions),
			Warnings:              len(warnings),
			Recommendations:       len(recommendations),
			RiskLevel:             risk,
		},
		Disclaimer: "This is not medical advice. Always consult your healthcare provider or pharmacist for medication interactions.",
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func interactionTool() Tool {
	return define("check_medication_interactions", "Check for dangerous drug interactions and provide safety recommendations.",
		func(_ context.Context, in checkInteractionsArgs) (Result, error) {
			return checkInteractions(in), nil
		})
}
