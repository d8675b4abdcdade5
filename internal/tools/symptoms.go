package tools

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

type analyzeSymptomsArgs struct {
	Symptoms           []string `json:"symptoms" description:"List of symptoms the user is experiencing" validate:"required,min=1"`
	Duration           string   `json:"duration" description:"How long symptoms have persisted, e.g. 2 hours, 3 days, 1 week" validate:"required"`
	Severity           string   `json:"severity" description:"Severity level of symptoms" enum:"mild,moderate,severe,critical" validate:"required,oneof=mild moderate severe critical"`
	AssociatedSymptoms []string `json:"associated_symptoms,omitempty" description:"Additional symptoms or related factors"`
	MedicalHistory     string   `json:"medical_history,omitempty" description:"Relevant medical history or current medications"`
	Age                int      `json:"age,omitempty" description:"User age for age-specific recommendations" validate:"omitempty,min=0,max=130"`
	Gender             string   `json:"gender,omitempty" description:"User gender for personalized advice" enum:"male,female,other" validate:"omitempty,oneof=male female other"`
}

type SymptomAnalysis struct {
	Symptoms               []string `json:"symptoms"`
	Duration               string   `json:"duration"`
	Severity               string   `json:"severity"`
	TriageLevel            string   `json:"triage_level"`
	HasEmergencySymptoms   bool     `json:"has_emergency_symptoms"`
	HasHighUrgencySymptoms bool     `json:"has_high_urgency_symptoms"`
}

type SymptomConsiderations struct {
	AgeGroup             string   `json:"age_group"`
	GenderConsiderations []string `json:"gender_considerations"`
	MedicalHistory       string   `json:"medical_history"`
}

type SymptomAssessment struct {
	Analysis                 SymptomAnalysis       `json:"analysis"`
	Recommendation           string                `json:"recommendation"`
	NextSteps                []string              `json:"next_steps"`
	PossibleCauses           []string              `json:"possible_causes"`
	SelfCareRecommendations  []string              `json:"self_care_recommendations"`
	RedFlags                 []string              `json:"red_flags"`
	AdditionalConsiderations SymptomConsiderations `json:"additional_considerations"`
	Disclaimer               string                `json:"disclaimer"`
}

const (
	TriageEmergency = "emergency"
	TriageUrgent    = "urgent"
	TriageSoon      = "soon"
	TriageRoutine   = "routine"
)

var emergencySymptoms = []string{
	"chest pain",
	"difficulty breathing",
	"severe shortness of breath",
	"sudden weakness or numbness",
	"severe headache with confusion",
	"uncontrolled bleeding",
	"severe abdominal pain",
	"suicidal thoughts",
	"loss of consciousness",
	"severe allergic reaction",
	"seizure",
}

var highUrgencySymptoms = []string{
	"moderate chest pain",
	"persistent vomiting",
	"high fever",
	"severe dizziness",
	"vision changes",
	"severe dehydration",
	"persistent cough with blood",
	"severe burns",
}

type triage struct {
	recommendation string
	nextSteps      []string
}

var triageAdvice = map[string]triage{
	TriageEmergency: {
		recommendation: "EMERGENCY: Call emergency services (911) immediately or go to the nearest emergency room.",
		nextSteps: []string{
			"Call emergency services now",
			"If unconscious or not breathing, start CPR if trained",
			"Have someone stay with you",
			"Prepare medical history and current medications",
		},
	},
	TriageUrgent: {
		recommendation: "URGENT: See a healthcare provider within 24 hours or go to urgent care.",
		nextSteps: []string{
			"Contact your primary care physician",
			"Go to urgent care or emergency room if symptoms worsen",
			"Monitor symptoms closely",
			"Prepare list of symptoms and timeline",
		},
	},
	TriageSoon: {
		recommendation: "SOON: Schedule an appointment with your healthcare provider within 3-5 days.",
		nextSteps: []string{
			"Schedule appointment with primary care physician",
			"Monitor symptoms for changes",
			"Track symptom progression",
			"Prepare questions for your doctor",
		},
	},
	TriageRoutine: {
		recommendation: "ROUTINE: Schedule a regular appointment when convenient, but monitor symptoms.",
		nextSteps: []string{
			"Schedule regular check-up",
			"Continue monitoring symptoms",
			"Practice self-care measures",
			"Contact doctor if symptoms change or worsen",
		},
	},
}

// symptomRule attaches advice to any reported symptom containing keyword.
type symptomRule struct {
	keyword string
	advice  []string
}

var causeRules = []symptomRule{
	{"headache", []string{"Tension headache, migraine, sinus pressure, dehydration, stress"}},
	{"nausea", []string{"Food poisoning, motion sickness, pregnancy, medication side effects, anxiety"}},
	{"fatigue", []string{"Lack of sleep, stress, anemia, thyroid issues, depression, poor nutrition"}},
	{"cough", []string{"Common cold, allergies, asthma, acid reflux, post-nasal drip"}},
	{"abdominal pain", []string{"Indigestion, gas, constipation, menstrual cramps, food intolerance"}},
	{"chest pain", []string{"Heartburn, anxiety, muscle strain, costochondritis (rib pain)"}},
}

var selfCareRules = []symptomRule{
	{"headache", []string{"Rest in a dark, quiet room", "Apply cold or warm compress to forehead", "Practice relaxation techniques"}},
	{"nausea", []string{"Eat small, bland meals", "Avoid strong odors and greasy foods", "Ginger tea or crackers may help"}},
	{"cough", []string{"Use honey and lemon in warm water", "Use humidifier to add moisture to air", "Avoid irritants like smoke and strong perfumes"}},
	{"fatigue", []string{"Maintain regular sleep schedule", "Light exercise and healthy diet", "Reduce stress through relaxation techniques"}},
}

var redFlagRules = []symptomRule{
	{"chest pain", []string{"Chest pain with shortness of breath, sweating, or left arm pain"}},
	{"headache", []string{"Sudden severe headache, worst headache of life, confusion, vision changes"}},
	{"abdominal pain", []string{"Severe pain, vomiting blood, black stools, fever with pain"}},
	{"fever", []string{"High fever (>103°F/39.4°C), confusion, difficulty breathing"}},
	{"rash", []string{"Rash with fever, difficulty breathing, swelling of face/tongue"}},
}

var durationPattern = regexp.MustCompile(`(\d+)\s*(hour|hr|minute|min|day|week|month)`)

// parseDuration converts free text like "3 days" to hours. Unparseable input
// counts as 24 hours.
func parseDuration(s string) float64 {
	m := durationPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 24
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 24
	}
	value := float64(v)
	switch m[2] {
	case "hour", "hr":
		return value
	case "minute", "min":
		return value / 60
	case "day":
		return value * 24
	case "week":
		return value * 24 * 7
	case "month":
		return value * 24 * 30
	}
	return 24
}

func ageGroup(age int) string {
	switch {
	case age < 2:
		return "infant"
	case age < 12:
		return "child"
	case age < 18:
		return "adolescent"
	case age < 65:
		return "adult"
	default:
		return "senior"
	}
}

func anyContains(items []string, keyword string) bool {
	for _, s := range items {
		if strings.Contains(strings.ToLower(s), keyword) {
			return true
		}
	}
	return false
}

func anyContainsAny(items, keywords []string) bool {
	for _, k := range keywords {
		if anyContains(items, k) {
			return true
		}
	}
	return false
}

func applyRules(symptoms []string, rules []symptomRule) []string {
	out := []string{}
	for _, r := range rules {
		if anyContains(symptoms, r.keyword) {
			out = append(out, r.advice...)
		}
	}
	return out
}

// analyzeSymptoms triages the reported symptoms. It is deterministic and
// touches no store.
func analyzeSymptoms(in analyzeSymptomsArgs) *SymptomAssessment {
	hasEmergency := anyContainsAny(in.Symptoms, emergencySymptoms)
	hasHighUrgency := anyContainsAny(in.Symptoms, highUrgencySymptoms)
	hours := parseDuration(in.Duration)

	level := TriageRoutine
	switch {
	case hasEmergency || in.Severity == "critical":
		level = TriageEmergency
	case hasHighUrgency || in.Severity == "severe" || hours < 24:
		level = TriageUrgent
	case hours < 72:
		level = TriageSoon
	}
	advice := triageAdvice[level]

	group := "adult"
	if in.Age > 0 {
		group = ageGroup(in.Age)
	}

	causes := applyRules(in.Symptoms, causeRules)
	if in.Age > 65 {
		causes = append(causes, "Consider age-related conditions and multiple medication interactions")
	}
	if in.Age > 0 && in.Age < 18 {
		causes = append(causes, "Growing pains, viral infections, allergies, school-related stress")
	}
	if len(causes) == 0 {
		causes = []string{"Multiple possible causes - consult healthcare provider"}
	}

	selfCare := []string{}
	if in.Severity == "mild" {
		selfCare = append(selfCare,
			"Rest and monitor symptoms for changes",
			"Stay hydrated with water or electrolyte drinks",
			"Use over-the-counter pain relievers if appropriate",
		)
	}
	selfCare = append(selfCare, applyRules(in.Symptoms, selfCareRules)...)

	redFlags := applyRules(in.Symptoms, redFlagRules)
	if len(redFlags) == 0 {
		redFlags = []string{"Seek immediate care if symptoms worsen rapidly"}
	}

	return &SymptomAssessment{
		Analysis: SymptomAnalysis{
			Symptoms:               in.Symptoms,
			Duration:               in.Duration,
			Severity:               in.Severity,
			TriageLevel:            level,
			HasEmergencySymptoms:   hasEmergency,
			HasHighUrgencySymptoms: hasHighUrgency,
		},
		Recommendation:          advice.recommendation,
		NextSteps:               advice.nextSteps,
		PossibleCauses:          causes,
		SelfCareRecommendations: selfCare,
		RedFlags:                redFlags,
		AdditionalConsiderations: SymptomConsiderations{
			AgeGroup:             group,
			GenderConsiderations: genderConsiderations(in.Gender, in.Symptoms),
			MedicalHistory:       in.MedicalHistory,
		},
		Disclaimer: "This is not a medical diagnosis. Always consult with a qualified healthcare professional for proper medical advice.",
	}
}

func genderConsiderations(gender string, symptoms []string) []string {
	out := []string{}
	switch gender {
	case "female":
		if anyContains(symptoms, "abdominal pain") {
			out = append(out, "Consider gynecological causes for abdominal pain")
		}
		if anyContains(symptoms, "chest pain") {
			out = append(out, "Women may experience different heart attack symptoms")
		}
	case "male":
		if anyContains(symptoms, "prostate") {
			out = append(out, "Prostate-related symptoms require urological evaluation")
		}
	}
	return out
}

func symptomTool() Tool {
	return define("analyze_symptoms", "Advanced symptom analysis with triage and personalized recommendations.",
		func(_ context.Context, in analyzeSymptomsArgs) (Result, error) {
			return analyzeSymptoms(in), nil
		})
}
