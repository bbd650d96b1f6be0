package anthropic

import (
	"fmt"
	"strings"
)

// buildVisitPrepQuestionsPrompt assembles the natural-language prompt for
// the question generator. The data sections enumerate the patient's actual
// records so the model can reference names, dates and severities instead
// of answering generically.
func buildVisitPrepQuestionsPrompt(vc VisitContext) string {
	symptomsText := "None logged"
	if len(vc.Symptoms) > 0 {
		lines := make([]string, 0, len(vc.Symptoms))
		for _, s := range vc.Symptoms {
			line := fmt.Sprintf("- %s (severity %d/10, started %s, status: %s)", s.Name, s.Severity, s.OnsetDate, s.Status)
			if s.Description != nil && *s.Description != "" {
				line += ": " + *s.Description
			}
			if s.Triggers != nil && *s.Triggers != "" {
				line += ", triggers: " + *s.Triggers
			}
			lines = append(lines, line)
		}
		symptomsText = strings.Join(lines, "\n")
	}

	medicationsText := "None logged"
	if len(vc.Medications) > 0 {
		lines := make([]string, 0, len(vc.Medications))
		for _, m := range vc.Medications {
			lines = append(lines, fmt.Sprintf("- %s %s, %s (status: %s) - for %s",
				m.Name, m.Dosage, m.Frequency, m.Status, m.ConditionsOrSymptoms))
		}
		medicationsText = strings.Join(lines, "\n")
	}

	providerText := "Provider information not available"
	if vc.Provider != nil {
		providerText = fmt.Sprintf("%s (%s", vc.Provider.Name, vc.Provider.Type)
		if vc.Provider.Specialty != nil && *vc.Provider.Specialty != "" {
			providerText += ", " + *vc.Provider.Specialty
		}
		providerText += ")"
	}

	return fmt.Sprintf(`You are helping a patient prepare for their upcoming doctor visit. Based on their health data, generate 5-8 specific, personalized questions they should ask their doctor.

VISIT DETAILS:
- Date: %s at %s
- Reason: %s
- Provider: %s

CURRENT SYMPTOMS:
%s

CURRENT MEDICATIONS:
%s

INSTRUCTIONS:
1. Generate 5-8 specific questions that reference the patient's actual data (symptom names, dates, severities, medications)
2. Questions should help the patient get the most out of their visit
3. Consider medication-symptom interactions when relevant
4. Make questions actionable and answerable by the doctor
5. Avoid generic questions - be specific to this patient's situation

Return ONLY a JSON array of question strings, nothing else. Format:
["Question 1", "Question 2", "Question 3", ...]`,
		vc.VisitDate, vc.VisitTime, vc.VisitReason, providerText, symptomsText, medicationsText)
}
