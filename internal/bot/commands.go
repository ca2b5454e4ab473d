package bot

import (
	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
)

// ComputeCommandSet returns the command menu for s. It depends on nothing but s.
func ComputeCommandSet(s *session.Session) []chat.Command {
	l := s.Language
	cmds := []chat.Command{
		{Name: "start", Description: T(l, "cmd.start")},
		{Name: "help", Description: T(l, "cmd.help")},
		{Name: "language", Description: T(l, "cmd.language")},
		{Name: "suggest", Description: T(l, "cmd.suggest")},
	}
	if s.Credits > 0 {
		cmds = append(cmds, chat.Command{Name: "generate", Description: T(l, "cmd.generate")})
	}
	return cmds
}
