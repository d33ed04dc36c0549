// Package flows holds the phase definitions for learning journeys and idea
// episodes. Both surfaces gate progress the same way, so the definitions live
// in one place: a phase is complete when every required task has a non-empty
// trimmed answer, and phase N unlocks only after phase N-1 completes.
package flows

import (
	"strings"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// Task is one answer field inside a phase.
type Task struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// Phase is one numbered stage of a journey or episode.
type Phase struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Tasks  []Task `json:"tasks"`
}

var journeyPhases = map[enums.JourneyType][]Phase{
	enums.JourneyTypeSkillPTC: {
		{Number: 1, Name: "Define Your Promise", Tasks: []Task{
			{ID: "promise_statement", Label: "What value do you promise to create?", Required: true},
			{ID: "target_audience", Label: "Who is that promise for?", Required: true},
		}},
		{Number: 2, Name: "Practice Delivery", Tasks: []Task{
			{ID: "practice_log", Label: "Where have you delivered this already?", Required: true},
			{ID: "feedback_summary", Label: "What did recipients say?", Required: true},
		}},
		{Number: 3, Name: "Training Plan", Tasks: []Task{
			{ID: "curriculum_outline", Label: "Outline how you would teach this", Required: true},
			{ID: "session_format", Label: "Describe a single session", Required: false},
		}},
		{Number: 4, Name: "Consulting Readiness", Tasks: []Task{
			{ID: "case_study", Label: "Write up one real engagement", Required: true},
			{ID: "pricing_model", Label: "How would you price it?", Required: true},
		}},
	},
	enums.JourneyTypeIdeaPTC: {
		{Number: 1, Name: "Problem Discovery", Tasks: []Task{
			{ID: "problem_statement", Label: "What problem are you solving?", Required: true},
			{ID: "affected_users", Label: "Who suffers from it today?", Required: true},
		}},
		{Number: 2, Name: "Solution Sketch", Tasks: []Task{
			{ID: "solution_outline", Label: "Sketch your solution", Required: true},
			{ID: "differentiators", Label: "Why you, why now?", Required: true},
		}},
		{Number: 3, Name: "Market Signal", Tasks: []Task{
			{ID: "evidence", Label: "What evidence of demand do you have?", Required: true},
			{ID: "interview_notes", Label: "Summarize your conversations", Required: false},
		}},
		{Number: 4, Name: "Pitch Assembly", Tasks: []Task{
			{ID: "pitch_summary", Label: "Your pitch in five sentences", Required: true},
			{ID: "ask", Label: "What do you need from co-builders?", Required: true},
		}},
	},
	enums.JourneyTypeScalingPath: {
		{Number: 1, Name: "Baseline Assessment", Tasks: []Task{
			{ID: "current_state", Label: "Describe your practice today", Required: true},
			{ID: "bottlenecks", Label: "What limits your reach?", Required: true},
		}},
		{Number: 2, Name: "Scaling Levers", Tasks: []Task{
			{ID: "levers", Label: "Which levers could scale you?", Required: true},
			{ID: "priorities", Label: "Rank them and explain", Required: true},
		}},
		{Number: 3, Name: "Operating Rhythm", Tasks: []Task{
			{ID: "cadence_plan", Label: "Your weekly operating cadence", Required: true},
			{ID: "metrics", Label: "How will you measure progress?", Required: false},
		}},
		{Number: 4, Name: "Personal Promise", Tasks: []Task{
			{ID: "personal_promise", Label: "Your personal promise at scale", Required: true},
			{ID: "accountability", Label: "Who holds you to it?", Required: true},
		}},
	},
}

var episodePhases = map[enums.Episode][]Phase{
	enums.EpisodeDevelopment: {
		{Number: 1, Name: "Frame the Idea", Tasks: []Task{
			{ID: "idea_statement", Label: "State the idea in one paragraph", Required: true},
			{ID: "inspiration", Label: "What sparked it?", Required: false},
		}},
		{Number: 2, Name: "Know the Customer", Tasks: []Task{
			{ID: "customer_profile", Label: "Describe your first customer", Required: true},
			{ID: "pain_points", Label: "Their three sharpest pains", Required: true},
		}},
		{Number: 3, Name: "Shape the Offer", Tasks: []Task{
			{ID: "offer_description", Label: "What exactly will you offer?", Required: true},
			{ID: "value_promise", Label: "The promise behind the offer", Required: true},
		}},
		{Number: 4, Name: "Plan the Build", Tasks: []Task{
			{ID: "build_plan", Label: "What must be built first?", Required: true},
			{ID: "required_roles", Label: "Which co-builder roles do you need?", Required: true},
		}},
	},
	enums.EpisodeValidation: {
		{Number: 1, Name: "Design the Experiment", Tasks: []Task{
			{ID: "hypothesis", Label: "The riskiest assumption to test", Required: true},
			{ID: "experiment_design", Label: "How will you test it?", Required: true},
		}},
		{Number: 2, Name: "Talk to the Market", Tasks: []Task{
			{ID: "interview_summary", Label: "Summarize customer conversations", Required: true},
			{ID: "signal_strength", Label: "How strong is the signal?", Required: true},
		}},
		{Number: 3, Name: "Measure the Response", Tasks: []Task{
			{ID: "metrics_summary", Label: "Numbers from the experiment", Required: true},
			{ID: "learnings", Label: "What did you learn?", Required: true},
		}},
	},
	enums.EpisodeGrowth: {
		{Number: 1, Name: "First Sales", Tasks: []Task{
			{ID: "sales_summary", Label: "Describe your first sales", Required: true},
			{ID: "channels", Label: "Which channels worked?", Required: true},
		}},
		{Number: 2, Name: "Team and Equity", Tasks: []Task{
			{ID: "team_plan", Label: "Who joins, in what role?", Required: true},
			{ID: "equity_split", Label: "How is equity shared?", Required: true},
		}},
		{Number: 3, Name: "Scale Readiness", Tasks: []Task{
			{ID: "growth_plan", Label: "The next twelve months", Required: true},
			{ID: "funding_needs", Label: "What resources are missing?", Required: false},
		}},
		{Number: 4, Name: "Launch Review", Tasks: []Task{
			{ID: "retrospective", Label: "What would you repeat or change?", Required: true},
			{ID: "next_steps", Label: "Your immediate next steps", Required: true},
		}},
	},
}

// JourneyPhases returns the ordered phase definitions for a journey type.
func JourneyPhases(journeyType enums.JourneyType) []Phase {
	return journeyPhases[journeyType]
}

// JourneyPhase looks up one phase by number.
func JourneyPhase(journeyType enums.JourneyType, number int) (Phase, bool) {
	return lookup(journeyPhases[journeyType], number)
}

// JourneyPhaseCount returns how many phases a journey type defines.
func JourneyPhaseCount(journeyType enums.JourneyType) int {
	return len(journeyPhases[journeyType])
}

// EpisodePhases returns the ordered phase definitions for an episode.
func EpisodePhases(episode enums.Episode) []Phase {
	return episodePhases[episode]
}

// EpisodePhase looks up one phase by number.
func EpisodePhase(episode enums.Episode, number int) (Phase, bool) {
	return lookup(episodePhases[episode], number)
}

// EpisodePhaseCount returns how many phases an episode defines.
func EpisodePhaseCount(episode enums.Episode) int {
	return len(episodePhases[episode])
}

func lookup(phases []Phase, number int) (Phase, bool) {
	for _, phase := range phases {
		if phase.Number == number {
			return phase, true
		}
	}
	return Phase{}, false
}

// MissingAnswers returns the ids of required tasks whose answer is empty
// after trimming. An empty result means the phase may be completed.
func MissingAnswers(phase Phase, responses map[string]string) []string {
	var missing []string
	for _, task := range phase.Tasks {
		if !task.Required {
			continue
		}
		if strings.TrimSpace(responses[task.ID]) == "" {
			missing = append(missing, task.ID)
		}
	}
	return missing
}
