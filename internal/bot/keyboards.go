package bot

import (
	"github.com/suPer8Hu/icebreaker-bot/internal/chat"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
)

// callback payloads
const (
	actSignup            = "signup:email"
	actLanguagePrefix    = "language:"
	actProfileNew        = "profile:new"
	actProfileDelete     = "profile:delete"
	actProfileDelPrefix  = "profile:delete:"
	actProfileConfirm    = "profile:delete:confirm:"
	actProfileDelCancel  = "profile:delete:cancel"
	actProfilePrefix     = "profile:"
	actCategoryPrefix    = "category:"
	actCategoriesDone    = "categories:done"
	actCardAnother       = "card:another"
	actCardUndo          = "card:undo"
	actCardLove          = "card:love"
	actCardArchive       = "card:archive"
	actCardBan           = "card:ban"
	actCardToggleArch    = "card:toggle_archived"
	actCardToggleLoved   = "card:toggle_loved"
	actCardChangeCats    = "card:change_categories"
	actCardChangeProfile = "card:change_profile"
	actCardChangeLang    = "card:change_language"
	actCardStartOver     = "card:start_over"
	actGenerate          = "game:generate"
	actCancel            = "nav:cancel"
	actBack              = "nav:back"
	actPlayPrefix        = "play:"
)

func btn(l lang, key, data string) chat.Button {
	return chat.Button{Text: T(l, key), Data: data}
}

func keyboard(rows ...[]chat.Button) chat.Extras {
	return chat.Extras{Keyboard: rows}
}

func authKeyboard(l lang) chat.Extras {
	return keyboard(
		[]chat.Button{btn(l, "btn.signup", actSignup)},
		[]chat.Button{btn(l, "btn.change_language", actCardChangeLang)},
	)
}

func cancelKeyboard(l lang) chat.Extras {
	return keyboard([]chat.Button{btn(l, "btn.cancel", actCancel)})
}

func backKeyboard(l lang) chat.Extras {
	return keyboard([]chat.Button{btn(l, "btn.back_to_game", actBack)})
}

func languageKeyboard() chat.Extras {
	row := func(a, b models.Language) []chat.Button {
		return []chat.Button{
			{Text: T(en, "language."+string(a)), Data: actLanguagePrefix + string(a)},
			{Text: T(en, "language."+string(b)), Data: actLanguagePrefix + string(b)},
		}
	}
	return keyboard(row(models.English, models.Russian), row(models.French, models.Italian))
}

func helpKeyboard(l lang, credits int) chat.Extras {
	rows := [][]chat.Button{{btn(l, "btn.change_language", actCardChangeLang)}}
	if credits > 0 {
		rows = append(rows, []chat.Button{btn(l, "btn.generate", actGenerate)})
	}
	rows = append(rows, []chat.Button{btn(l, "btn.back_to_game", actBack)})
	return chat.Extras{Keyboard: rows}
}

func profileKeyboard(l lang, profiles []models.Profile) chat.Extras {
	rows := make([][]chat.Button, 0, len(profiles)+2)
	for _, p := range profiles {
		rows = append(rows, []chat.Button{{Text: p.Name, Data: actProfilePrefix + p.ID}})
	}
	rows = append(rows, []chat.Button{btn(l, "btn.create_profile", actProfileNew)})
	if len(profiles) > 0 {
		rows = append(rows, []chat.Button{btn(l, "btn.delete_profile", actProfileDelete)})
	}
	return chat.Extras{Keyboard: rows}
}

func profileDeletionKeyboard(l lang, profiles []models.Profile) chat.Extras {
	rows := make([][]chat.Button, 0, len(profiles)+1)
	for _, p := range profiles {
		rows = append(rows, []chat.Button{{Text: "🗑 " + p.Name, Data: actProfileDelPrefix + p.ID}})
	}
	rows = append(rows, []chat.Button{btn(l, "btn.cancel", actProfileDelCancel)})
	return chat.Extras{Keyboard: rows}
}

func profileConfirmKeyboard(l lang, profileID string) chat.Extras {
	return keyboard(
		[]chat.Button{btn(l, "btn.confirm_delete", actProfileConfirm+profileID)},
		[]chat.Button{btn(l, "btn.cancel", actProfileDelCancel)},
	)
}

func categoryKeyboard(l lang, cats []models.Category, sel session.CategorySelection) chat.Extras {
	rows := make([][]chat.Button, 0, len(cats)+1)
	for _, c := range cats {
		name := c.Name(l)
		if sel.Contains(c.ID) {
			name += " ✅"
		}
		rows = append(rows, []chat.Button{{Text: name, Data: actCategoryPrefix + c.ID}})
	}
	if sel.Len() > 0 {
		rows = append(rows, []chat.Button{btn(l, "btn.start_game", actCategoriesDone)})
	}
	return chat.Extras{Keyboard: rows}
}

// cardKeyboard drops the per-card buttons when there is no card on screen.
func cardKeyboard(s *session.Session) chat.Extras {
	l := s.Language
	var rows [][]chat.Button

	if s.Card != nil {
		next := []chat.Button{btn(l, "btn.another", actCardAnother)}
		if s.PreviousCard != nil {
			next = append([]chat.Button{btn(l, "btn.undo", actCardUndo)}, next...)
		}
		rows = append(rows, next)

		love := btn(l, "btn.love", actCardLove)
		if s.Card.Status == models.StatusLoved {
			love = btn(l, "btn.unlove", actCardLove)
		}
		archive := btn(l, "btn.archive", actCardArchive)
		if s.Card.Status == models.StatusArchived {
			archive = btn(l, "btn.unarchive", actCardArchive)
		}
		rows = append(rows,
			[]chat.Button{love, archive},
			[]chat.Button{btn(l, "btn.ban", actCardBan)},
		)
	}

	archived := btn(l, "btn.show_archived", actCardToggleArch)
	if s.IncludeArchived {
		archived = btn(l, "btn.hide_archived", actCardToggleArch)
	}
	loved := btn(l, "btn.show_loved", actCardToggleLoved)
	if s.IncludeLoved {
		loved = btn(l, "btn.hide_loved", actCardToggleLoved)
	}

	rows = append(rows,
		[]chat.Button{archived, loved},
		[]chat.Button{btn(l, "btn.change_categories", actCardChangeCats), btn(l, "btn.change_profile", actCardChangeProfile)},
		[]chat.Button{btn(l, "btn.change_language", actCardChangeLang), btn(l, "btn.start_over", actCardStartOver)},
	)
	return chat.Extras{Keyboard: rows, HTML: true}
}

func playKeyboard(l lang, categoryID string) chat.Extras {
	return keyboard([]chat.Button{btn(l, "btn.play_now", actPlayPrefix+categoryID)})
}
