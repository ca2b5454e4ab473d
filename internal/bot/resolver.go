package bot

import "github.com/suPer8Hu/icebreaker-bot/internal/session"

// Resolve derives the effective state from the session shape. The stored step
// is only a hint; the checks run in fixed precedence order.
func Resolve(s *session.Session) session.Step {
	switch {
	case s.Step == session.StepHelp:
		return session.StepHelp
	case s.Step == session.StepSignupEmail:
		return session.StepSignupEmail
	case s.Credits > 0 && s.Step == session.StepGameGeneration:
		return session.StepGameGeneration
	case s.Step == session.StepSignupName:
		if s.Email == "" {
			return session.StepSignupEmail
		}
		return session.StepSignupName
	case !s.Authenticated():
		return session.StepAuthentication
	case s.Step == session.StepProfileCreation,
		s.Step == session.StepProfileDeletion,
		s.Step == session.StepSuggestionCreation,
		s.Step == session.StepBroadcast:
		return s.Step
	case s.SelectedProfileID == "":
		return session.StepProfileSelection
	case !s.SelectedCategories.IsSet():
		return session.StepCategorySelection
	default:
		return session.StepCardRetrieval
	}
}
