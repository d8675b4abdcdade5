package tools

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type emergencyContact struct {
	Name         string `json:"name" validate:"required"`
	Relationship string `json:"relationship" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Priority     string `json:"priority" enum:"primary,secondary,tertiary" validate:"required,oneof=primary secondary tertiary"`
}

type medicalInfo struct {
	Conditions  []string `json:"conditions,omitempty"`
	Medications []string `json:"medications,omitempty"`
	Allergies   []string `json:"allergies,omitempty"`
	BloodType   string   `json:"blood_type,omitempty"`
	OrganDonor  bool     `json:"organ_donor,omitempty"`
}

type coordinateEmergencyArgs struct {
	EmergencyType     string             `json:"emergency_type" description:"Type of emergency" enum:"medical,accident,fire,security,natural_disaster,other" validate:"required,oneof=medical accident fire security natural_disaster other"`
	Location          string             `json:"location" description:"Current location or address" validate:"required"`
	Severity          string             `json:"severity" description:"Emergency severity level" enum:"low,medium,high,critical" validate:"required,oneof=low medium high critical"`
	Description       string             `json:"description" description:"Brief description of the emergency situation" validate:"required"`
	Injuries          []string           `json:"injuries,omitempty" description:"Any injuries or medical conditions"`
	PeopleInvolved    int                `json:"people_involved,omitempty" description:"Number of people involved" validate:"omitempty,min=1"`
	EmergencyContacts []emergencyContact `json:"emergency_contacts,omitempty" description:"Emergency contacts to notify" validate:"omitempty,dive"`
	MedicalInfo       medicalInfo        `json:"medical_info,omitempty" description:"Critical medical information"`
}

type ContactRef struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Priority     string `json:"priority"`
}

type CommunicationPlan struct {
	PrimaryContacts    []ContactRef `json:"primary_contacts"`
	SecondaryContacts  []ContactRef `json:"secondary_contacts"`
	NotificationMethod string       `json:"notification_method"`
	MessageTemplate    string       `json:"message_template"`
	FollowUp           string       `json:"follow_up"`
}

type CriticalInfo struct {
	BloodType  string   `json:"blood_type,omitempty"`
	OrganDonor bool     `json:"organ_donor"`
	Allergies  []string `json:"allergies"`
}

type MedicalBriefing struct {
	CriticalInfo       CriticalInfo `json:"critical_info"`
	CurrentConditions  []string     `json:"current_conditions"`
	CurrentMedications []string     `json:"current_medications"`
	CurrentInjuries    []string     `json:"current_injuries"`
	ImportantNotes     []string     `json:"important_notes"`
}

type FollowUpPlan struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"short_term"`
	LongTerm  []string `json:"long_term"`
}

type EmergencyResponse struct {
	EmergencyType      string            `json:"emergency_type"`
	Location           string            `json:"location"`
	Severity           string            `json:"severity"`
	Description        string            `json:"description"`
	PeopleInvolved     int               `json:"people_involved"`
	Timestamp          time.Time         `json:"timestamp"`
	ResponseProtocol   []string          `json:"response_protocol"`
	ImmediateActions   []string          `json:"immediate_actions"`
	EmergencyServices  []string          `json:"emergency_services"`
	CommunicationPlan  CommunicationPlan `json:"communication_plan"`
	MedicalBriefing    MedicalBriefing   `json:"medical_briefing"`
	SafetyInstructions []string          `json:"safety_instructions"`
	FollowUpPlan       FollowUpPlan      `json:"follow_up_plan"`
}

type NotificationRecipient struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type EmergencyNotification struct {
	Priority    string                  `json:"priority"`
	Message     string                  `json:"message"`
	Recipients  []NotificationRecipient `json:"recipients"`
	Authorities []string                `json:"authorities"`
}

type Checklist struct {
	Immediate []string `json:"immediate"`
	During    []string `json:"during"`
	After     []string `json:"after"`
}

type EmergencyPlan struct {
	Response           EmergencyResponse     `json:"emergency_response"`
	Notification       EmergencyNotification `json:"emergency_notification"`
	Checklist          Checklist             `json:"coordination_checklist"`
	ImportantReminders []string              `json:"important_reminders"`
	Disclaimer         string                `json:"disclaimer"`
}

// byType holds per-emergency-type lists; the "" entry is the fallback.
type byType map[string][]string

func (b byType) get(kind string) []string {
	if v, ok := b[kind]; ok {
		return v
	}
	return b[""]
}

var responseProtocols = byType{
	"medical": {
		"Call emergency medical services (911/EMS)",
		"Provide clear location and situation description",
		"Stay on the line and follow dispatcher instructions",
		"Prepare medical information and history",
		"Alert emergency contacts",
		"Ensure access for emergency responders",
	},
	"accident": {
		"Ensure scene safety before approaching",
		"Call emergency services immediately",
		"Do not move injured unless absolutely necessary",
		"Provide clear directions to location",
		"Alert emergency contacts",
		"Document witness information if available",
	},
	"fire": {
		"Evacuate the building immediately",
		"Call fire department from safe location",
		"Do not use elevators",
		"Stay low in smoke, cover mouth and nose",
		"Alert others and assist those who need help",
		"Do not re-enter building until cleared by firefighters",
	},
	"security": {
		"Move to a safe location immediately",
		"Call police emergency number",
		"Provide detailed description of threat",
		"Stay on the line with authorities",
		"Follow police instructions exactly",
		"Alert building security if available",
	},
	"natural_disaster": {
		"Move to higher ground (floods) or shelter (storms)",
		"Call emergency services if immediate danger",
		"Follow evacuation orders if issued",
		"Stay tuned to emergency broadcasts",
		"Prepare emergency kit and supplies",
		"Alert emergency contacts of your status",
	},
	"": {
		"Call emergency services immediately",
		"Move to a safe location",
		"Follow official instructions",
		"Alert emergency contacts",
		"Document the situation",
	},
}

var immediateActions = byType{
	"medical": {
		"Call emergency services now",
		"Stay calm and assess the situation",
		"Perform CPR if trained and person is unresponsive",
		"Control bleeding with direct pressure",
		"Monitor breathing and consciousness",
		"Clear airway if obstructed",
	},
	"accident": {
		"Ensure your safety first",
		"Call emergency services",
		"Turn on hazard lights",
		"Move vehicles off the road if safe",
		"Check for injuries in all vehicles",
		"Exchange information with other parties",
	},
	"fire": {
		"Evacuate immediately",
		"Feel doors for heat before opening",
		"Use stairs, never elevators",
		"Crawl under smoke",
		"Cover mouth with wet cloth",
		"Close doors behind you",
	},
	"": {
		"Ensure personal safety",
		"Call emergency services",
		"Move away from danger",
		"Alert others nearby",
		"Follow emergency protocols",
	},
}

var emergencyServices = byType{
	"medical":          {"EMS/Ambulance", "Paramedics", "Hospital Emergency Room"},
	"accident":         {"Police", "Fire Department", "Tow Service", "EMS if injuries"},
	"fire":             {"Fire Department", "EMS if injuries", "Police for traffic control"},
	"security":         {"Police", "Security Services", "Emergency Response Team"},
	"natural_disaster": {"Emergency Management", "Red Cross", "Local Authorities", "National Guard if needed"},
	"":                 {"Local Emergency Services", "Police", "Fire Department"},
}

var safetyInstructions = byType{
	"medical": {
		"Do not leave the person alone if they are unconscious",
		"Do not give anything to eat or drink if person is unresponsive",
		"Do not move person unless in immediate danger",
		"Keep person warm but not overheated",
		"Be prepared to perform CPR if needed",
	},
	"fire": {
		"Never go back into a burning building",
		"If clothes catch fire, stop, drop, and roll",
		"Stay low in smoke, cover mouth and nose",
		"Use the back of your hand to test doors",
		"If trapped, seal gaps around doors with wet towels",
	},
	"accident": {
		"Do not admit fault at the scene",
		"Take photos of the accident scene",
		"Exchange insurance information",
		"Seek medical attention even if you feel fine",
		"Report the accident to police if injuries occurred",
	},
	"": {
		"Prioritize personal safety",
		"Follow emergency service instructions",
		"Do not put yourself in danger",
		"Assist others only if safe to do so",
		"Stay calm and provide clear information",
	},
}

var authorities = byType{
	"medical":          {"Local EMS", "Nearest Hospital"},
	"accident":         {"Local Police", "Highway Patrol if applicable"},
	"fire":             {"Local Fire Department", "Fire Marshal"},
	"security":         {"Local Police", "Security Companies"},
	"natural_disaster": {"Emergency Management Agency", "Local Authorities", "FEMA if applicable"},
	"":                 {"Local Emergency Services"},
}

var followUp = FollowUpPlan{
	Immediate: []string{
		"Follow up with emergency contacts",
		"Schedule follow-up medical care",
		"Document incident for insurance",
		"Preserve evidence if applicable",
	},
	ShortTerm: []string{
		"Seek psychological support if needed",
		"Review emergency preparedness",
		"Update emergency contact information",
		"Consider additional safety measures",
	},
	LongTerm: []string{
		"Schedule regular health check-ups",
		"Review and update emergency plans",
		"Consider additional training or courses",
		"Join support groups if applicable",
	},
}

var coordinationChecklist = Checklist{
	Immediate: []string{
		"Ensure personal safety first",
		"Call emergency services if not already done",
		"Provide location details clearly",
		"Stay on the line with emergency services",
		"Notify emergency contacts",
		"Prepare medical information",
	},
	During: []string{
		"Follow emergency service instructions",
		"Keep communication lines open",
		"Monitor situation for changes",
		"Assist others if safe to do so",
		"Document important details",
	},
	After: []string{
		"Follow up with emergency contacts",
		"Document incident for records",
		"Schedule follow-up medical care",
		"Review emergency preparedness",
		"Update emergency contact information",
	},
}

// now is replaced in tests.
var now = time.Now

func coordinateEmergency(in coordinateEmergencyArgs) *EmergencyPlan {
	ts := now().UTC()
	people := in.PeopleInvolved
	if people == 0 {
		people = 1
	}

	primary, secondary := []ContactRef{}, []ContactRef{}
	recipients := make([]NotificationRecipient, 0, len(in.EmergencyContacts))
	for _, c := range in.EmergencyContacts {
		ref := ContactRef{Name: c.Name, Relationship: c.Relationship, Phone: c.Phone, Priority: c.Priority}
		switch c.Priority {
		case "primary":
			primary = append(primary, ref)
		case "secondary":
			secondary = append(secondary, ref)
		}
		recipients = append(recipients, NotificationRecipient{
			Name:  c.Name,
			Phone: c.Phone,
			Message: fmt.Sprintf("Hi %s, this is an emergency notification. I'm experiencing a %s situation at %s. Please contact me immediately or call emergency services.",
				c.Name, in.EmergencyType, in.Location),
		})
	}

	method := "text_first"
	priority := "HIGH"
	if in.Severity == "critical" {
		method = "immediate_call"
		priority = "URGENT"
	}

	return &EmergencyPlan{
		Response: EmergencyResponse{
			EmergencyType:     in.EmergencyType,
			Location:          in.Location,
			Severity:          in.Severity,
			Description:       in.Description,
			PeopleInvolved:    people,
			Timestamp:         ts,
			ResponseProtocol:  responseProtocols.get(in.EmergencyType),
			ImmediateActions:  immediateActions.get(in.EmergencyType),
			EmergencyServices: emergencyServices.get(in.EmergencyType),
			CommunicationPlan: CommunicationPlan{
				PrimaryContacts:    primary,
				SecondaryContacts:  secondary,
				NotificationMethod: method,
				MessageTemplate:    "Emergency: I need assistance. Location: [LOCATION]. Situation: [DESCRIPTION]",
				FollowUp:           "Send updates every 15 minutes until situation resolved",
			},
			MedicalBriefing: MedicalBriefing{
				CriticalInfo: CriticalInfo{
					BloodType:  in.MedicalInfo.BloodType,
					OrganDonor: in.MedicalInfo.OrganDonor,
					Allergies:  nonNil(in.MedicalInfo.Allergies),
				},
				CurrentConditions:  nonNil(in.MedicalInfo.Conditions),
				CurrentMedications: nonNil(in.MedicalInfo.Medications),
				CurrentInjuries:    nonNil(in.Injuries),
				ImportantNotes: []string{
					"Carry medical alert information",
					"Inform emergency services of allergies",
					"Mention current medications",
					"Note any medical conditions",
				},
			},
			SafetyInstructions: safetyInstructions.get(in.EmergencyType),
			FollowUpPlan:       followUp,
		},
		Notification: EmergencyNotification{
			Priority: priority,
			Message: fmt.Sprintf("EMERGENCY ALERT\n\nType: %s\nLocation: %s\nDescription: %s\nTime: %s\n\nPlease respond immediately or contact emergency services.",
				strings.ToUpper(in.EmergencyType), in.Location, in.Description, ts.Format(time.RFC1123)),
			Recipients:  recipients,
			Authorities: authorities.get(in.EmergencyType),
		},
		Checklist: coordinationChecklist,
		ImportantReminders: []string{
			"Your safety is the top priority",
			"Follow instructions from emergency services",
			"Keep emergency contacts informed",
			"Document everything for insurance/follow-up",
			"Seek medical attention even for minor injuries",
		},
		Disclaimer: "This tool coordinates emergency response but does not replace professional emergency services. Always call 911 or local emergency number first.",
	}
}

func emergencyTool() Tool {
	return define("coordinate_emergency", "Coordinate emergency response, alert contacts, and provide crisis management.",
		func(_ context.Context, in coordinateEmergencyArgs) (Result, error) {
			return coordinateEmergency(in), nil
		})
}
