package bot

import (
	"fmt"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
)

type lang = models.Language

const (
	en = models.English
	ru = models.Russian
	fr = models.French
	it = models.Italian
)

// T looks up key in lang, falling back to English, and formats args into it.
func T(l models.Language, key string, args ...any) string {
	entry, ok := catalog[key]
	if !ok {
		return key
	}
	s := entry[l]
	if s == "" {
		s = entry[en]
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

var catalog = map[string]map[lang]string{
	"auth.welcome": {
		en: "Welcome to Icebreaker! 🧊\n\nSend me your secret phrase to log in, or sign up to get one.",
		ru: "Добро пожаловать в Icebreaker! 🧊\n\nОтправьте секретную фразу, чтобы войти, или зарегистрируйтесь.",
		fr: "Bienvenue sur Icebreaker ! 🧊\n\nEnvoyez votre phrase secrète pour vous connecter, ou inscrivez-vous.",
		it: "Benvenuto su Icebreaker! 🧊\n\nInviami la tua frase segreta per accedere, oppure registrati.",
	},
	"auth.invalid": {
		en: "That secret phrase does not match any account. Try again or sign up.",
		ru: "Эта секретная фраза не подходит ни к одному аккаунту. Попробуйте ещё раз или зарегистрируйтесь.",
		fr: "Cette phrase secrète ne correspond à aucun compte. Réessayez ou inscrivez-vous.",
		it: "Questa frase segreta non corrisponde a nessun account. Riprova o registrati.",
	},
	"auth.required": {
		en: "Please log in first.",
		ru: "Сначала войдите в аккаунт.",
		fr: "Connectez-vous d'abord.",
		it: "Prima effettua l'accesso.",
	},
	"signup.enter_email": {
		en: "Enter your email address:",
		ru: "Введите ваш email:",
		fr: "Entrez votre adresse e-mail :",
		it: "Inserisci il tuo indirizzo email:",
	},
	"signup.invalid_email": {
		en: "%q does not look like an email address. Try again:",
		ru: "%q не похоже на email. Попробуйте ещё раз:",
		fr: "%q ne ressemble pas à une adresse e-mail. Réessayez :",
		it: "%q non sembra un indirizzo email. Riprova:",
	},
	"signup.user_exists": {
		en: "An account with this email already exists. Log in with your secret phrase or use another email:",
		ru: "Аккаунт с таким email уже существует. Войдите по секретной фразе или укажите другой email:",
		fr: "Un compte existe déjà avec cet e-mail. Connectez-vous avec votre phrase secrète ou utilisez un autre e-mail :",
		it: "Esiste già un account con questa email. Accedi con la frase segreta o usa un'altra email:",
	},
	"signup.enter_name": {
		en: "What is your name?",
		ru: "Как вас зовут?",
		fr: "Comment vous appelez-vous ?",
		it: "Come ti chiami?",
	},
	"signup.name_empty": {
		en: "The name cannot be empty. What is your name?",
		ru: "Имя не может быть пустым. Как вас зовут?",
		fr: "Le nom ne peut pas être vide. Comment vous appelez-vous ?",
		it: "Il nome non può essere vuoto. Come ti chiami?",
	},
	"signup.done": {
		en: "Account created! Your secret phrase is:\n%s\nKeep it to log in from another device.",
		ru: "Аккаунт создан! Ваша секретная фраза:\n%s\nСохраните её, чтобы входить с других устройств.",
		fr: "Compte créé ! Votre phrase secrète :\n%s\nGardez-la pour vous connecter depuis un autre appareil.",
		it: "Account creato! La tua frase segreta è:\n%s\nConservala per accedere da un altro dispositivo.",
	},
	"login.done": {
		en: "Hi, %s!",
		ru: "Привет, %s!",
		fr: "Salut, %s !",
		it: "Ciao, %s!",
	},
	"help.message": {
		en: "Icebreaker serves conversation cards for you and your people.\n\n/start opens the game\n/language switches the language\n/suggest sends us a question idea\n/logout signs you out",
		ru: "Icebreaker подбирает карточки с вопросами для разговора.\n\n/start открывает игру\n/language меняет язык\n/suggest отправляет идею вопроса\n/logout выход из аккаунта",
		fr: "Icebreaker propose des cartes de conversation pour vous et vos proches.\n\n/start ouvre le jeu\n/language change la langue\n/suggest propose une question\n/logout vous déconnecte",
		it: "Icebreaker propone carte di conversazione per te e i tuoi amici.\n\n/start apre il gioco\n/language cambia lingua\n/suggest invia un'idea di domanda\n/logout esci dall'account",
	},
	"help.message_supporters": {
		en: "Thank you for supporting Icebreaker! 💛\n\n/generate creates a brand new game from your description (%d credits left)\n/start opens the game\n/language switches the language\n/suggest sends us a question idea",
		ru: "Спасибо за поддержку Icebreaker! 💛\n\n/generate создаёт новую игру по вашему описанию (осталось кредитов: %d)\n/start открывает игру\n/language меняет язык\n/suggest отправляет идею вопроса",
		fr: "Merci de soutenir Icebreaker ! 💛\n\n/generate crée un nouveau jeu à partir de votre description (%d crédits restants)\n/start ouvre le jeu\n/language change la langue\n/suggest propose une question",
		it: "Grazie per sostenere Icebreaker! 💛\n\n/generate crea un nuovo gioco dalla tua descrizione (%d crediti rimasti)\n/start apre il gioco\n/language cambia lingua\n/suggest invia un'idea di domanda",
	},
	"profile.select_prompt": {
		en: "Who is playing? Pick a profile:",
		ru: "Кто играет? Выберите профиль:",
		fr: "Qui joue ? Choisissez un profil :",
		it: "Chi gioca? Scegli un profilo:",
	},
	"profile.invalid": {
		en: "Please pick a profile with the buttons below.",
		ru: "Выберите профиль кнопками ниже.",
		fr: "Choisissez un profil avec les boutons ci-dessous.",
		it: "Scegli un profilo con i pulsanti qui sotto.",
	},
	"profile.unavailable": {
		en: "That profile is no longer available.",
		ru: "Этот профиль больше недоступен.",
		fr: "Ce profil n'est plus disponible.",
		it: "Questo profilo non è più disponibile.",
	},
	"profile.create_prompt": {
		en: "Send a name for the new profile (up to 50 characters):",
		ru: "Отправьте название нового профиля (до 50 символов):",
		fr: "Envoyez un nom pour le nouveau profil (50 caractères max) :",
		it: "Invia un nome per il nuovo profilo (massimo 50 caratteri):",
	},
	"profile.length_error": {
		en: "The profile name must be between 1 and 50 characters. Try again:",
		ru: "Название профиля должно быть от 1 до 50 символов. Попробуйте ещё раз:",
		fr: "Le nom du profil doit contenir entre 1 et 50 caractères. Réessayez :",
		it: "Il nome del profilo deve avere da 1 a 50 caratteri. Riprova:",
	},
	"profile.created": {
		en: "Profile %q created.",
		ru: "Профиль %q создан.",
		fr: "Profil %q créé.",
		it: "Profilo %q creato.",
	},
	"profile.delete_prompt": {
		en: "Which profile should be deleted?",
		ru: "Какой профиль удалить?",
		fr: "Quel profil supprimer ?",
		it: "Quale profilo vuoi eliminare?",
	},
	"profile.delete_confirm": {
		en: "Delete %q and all its card history?",
		ru: "Удалить %q вместе с историей карточек?",
		fr: "Supprimer %q et tout son historique de cartes ?",
		it: "Eliminare %q e tutta la cronologia delle carte?",
	},
	"profile.deleted": {
		en: "Profile %q deleted.",
		ru: "Профиль %q удалён.",
		fr: "Profil %q supprimé.",
		it: "Profilo %q eliminato.",
	},
	"category.prompt": {
		en: "Pick one or more categories:",
		ru: "Выберите одну или несколько категорий:",
		fr: "Choisissez une ou plusieurs catégories :",
		it: "Scegli una o più categorie:",
	},
	"category.selected_count": {
		en: "Selected: %d",
		ru: "Выбрано: %d",
		fr: "Sélectionnées : %d",
		it: "Selezionate: %d",
	},
	"category.select_at_least_one": {
		en: "Select at least one category to start.",
		ru: "Выберите хотя бы одну категорию.",
		fr: "Sélectionnez au moins une catégorie.",
		it: "Seleziona almeno una categoria.",
	},
	"category.none": {
		en: "There are no categories yet.",
		ru: "Категорий пока нет.",
		fr: "Il n'y a pas encore de catégories.",
		it: "Non ci sono ancora categorie.",
	},
	"category.unavailable": {
		en: "The chosen categories are no longer available. Pick again:",
		ru: "Выбранные категории больше недоступны. Выберите заново:",
		fr: "Les catégories choisies ne sont plus disponibles. Choisissez à nouveau :",
		it: "Le categorie scelte non sono più disponibili. Scegli di nuovo:",
	},
	"card.category_info": {
		en: "Category: %s",
		ru: "Категория: %s",
		fr: "Catégorie : %s",
		it: "Categoria: %s",
	},
	"card.no_cards": {
		en: "Nothing left to show here. Change the categories or the filters.",
		ru: "Здесь больше нечего показать. Измените категории или фильтры.",
		fr: "Plus rien à afficher ici. Changez les catégories ou les filtres.",
		it: "Non c'è altro da mostrare. Cambia le categorie o i filtri.",
	},
	"card.all_viewed": {
		en: "You've seen every card here.",
		ru: "Вы посмотрели все карточки.",
		fr: "Vous avez vu toutes les cartes.",
		it: "Hai visto tutte le carte.",
	},
	"card.only_neutral": {
		en: "No loved or archived cards left in this selection.",
		ru: "В этой подборке не осталось любимых или архивных карточек.",
		fr: "Plus de cartes favorites ou archivées dans cette sélection.",
		it: "Non ci sono più carte preferite o archiviate in questa selezione.",
	},
	"card.status.loved": {
		en: "❤️ Loved",
		ru: "❤️ В избранном",
		fr: "❤️ Favorite",
		it: "❤️ Preferita",
	},
	"card.status.archived": {
		en: "🗄 Archived",
		ru: "🗄 В архиве",
		fr: "🗄 Archivée",
		it: "🗄 Archiviata",
	},
	"btn.another":           {en: "➡️ Next", ru: "➡️ Дальше", fr: "➡️ Suivante", it: "➡️ Avanti"},
	"btn.undo":              {en: "⬅️ Back", ru: "⬅️ Назад", fr: "⬅️ Retour", it: "⬅️ Indietro"},
	"btn.love":              {en: "❤️ Love", ru: "❤️ Нравится", fr: "❤️ J'adore", it: "❤️ Mi piace"},
	"btn.unlove":            {en: "💔 Unlove", ru: "💔 Убрать", fr: "💔 Retirer", it: "💔 Togli"},
	"btn.archive":           {en: "🗄 Archive", ru: "🗄 В архив", fr: "🗄 Archiver", it: "🗄 Archivia"},
	"btn.unarchive":         {en: "📤 Unarchive", ru: "📤 Из архива", fr: "📤 Désarchiver", it: "📤 Ripristina"},
	"btn.ban":               {en: "🚫 Never show", ru: "🚫 Не показывать", fr: "🚫 Ne plus montrer", it: "🚫 Non mostrare"},
	"btn.show_archived":     {en: "Show archived", ru: "Показывать архив", fr: "Afficher les archivées", it: "Mostra archiviate"},
	"btn.hide_archived":     {en: "Hide archived", ru: "Скрыть архив", fr: "Masquer les archivées", it: "Nascondi archiviate"},
	"btn.show_loved":        {en: "Show loved", ru: "Показывать избранное", fr: "Afficher les favorites", it: "Mostra preferite"},
	"btn.hide_loved":        {en: "Hide loved", ru: "Скрыть избранное", fr: "Masquer les favorites", it: "Nascondi preferite"},
	"btn.change_categories": {en: "🗂 Categories", ru: "🗂 Категории", fr: "🗂 Catégories", it: "🗂 Categorie"},
	"btn.change_profile":    {en: "👤 Profile", ru: "👤 Профиль", fr: "👤 Profil", it: "👤 Profilo"},
	"btn.start_over":        {en: "🔄 Start over", ru: "🔄 Сначала", fr: "🔄 Recommencer", it: "🔄 Ricomincia"},
	"btn.change_language":   {en: "🌐 Language", ru: "🌐 Язык", fr: "🌐 Langue", it: "🌐 Lingua"},
	"btn.signup":            {en: "✍️ Sign up", ru: "✍️ Регистрация", fr: "✍️ S'inscrire", it: "✍️ Registrati"},
	"btn.create_profile":    {en: "➕ New profile", ru: "➕ Новый профиль", fr: "➕ Nouveau profil", it: "➕ Nuovo profilo"},
	"btn.delete_profile":    {en: "🗑 Delete a profile", ru: "🗑 Удалить профиль", fr: "🗑 Supprimer un profil", it: "🗑 Elimina un profilo"},
	"btn.confirm_delete":    {en: "Yes, delete", ru: "Да, удалить", fr: "Oui, supprimer", it: "Sì, elimina"},
	"btn.cancel":            {en: "Cancel", ru: "Отмена", fr: "Annuler", it: "Annulla"},
	"btn.start_game":        {en: "▶️ Start", ru: "▶️ Начать", fr: "▶️ Commencer", it: "▶️ Inizia"},
	"btn.back_to_game":      {en: "🎲 Back to the game", ru: "🎲 Вернуться к игре", fr: "🎲 Retour au jeu", it: "🎲 Torna al gioco"},
	"btn.generate":          {en: "✨ Generate a game", ru: "✨ Создать игру", fr: "✨ Générer un jeu", it: "✨ Genera un gioco"},
	"btn.play_now":          {en: "▶️ Play now", ru: "▶️ Играть", fr: "▶️ Jouer", it: "▶️ Gioca ora"},
	"language.prompt": {
		en: "Choose your language:",
		ru: "Выберите язык:",
		fr: "Choisissez votre langue :",
		it: "Scegli la lingua:",
	},
	"language.en": {en: "🇬🇧 English"},
	"language.ru": {en: "🇷🇺 Русский"},
	"language.fr": {en: "🇫🇷 Français"},
	"language.it": {en: "🇮🇹 Italiano"},
	"suggestion.prompt": {
		en: "Send the question you would like to see in the game:",
		ru: "Отправьте вопрос, который вы хотели бы видеть в игре:",
		fr: "Envoyez la question que vous aimeriez voir dans le jeu :",
		it: "Invia la domanda che vorresti vedere nel gioco:",
	},
	"suggestion.empty": {
		en: "The suggestion cannot be empty. Send your question:",
		ru: "Предложение не может быть пустым. Отправьте вопрос:",
		fr: "La suggestion ne peut pas être vide. Envoyez votre question :",
		it: "Il suggerimento non può essere vuoto. Invia la tua domanda:",
	},
	"suggestion.success": {
		en: "Thanks! We will review your suggestion.",
		ru: "Спасибо! Мы рассмотрим ваше предложение.",
		fr: "Merci ! Nous examinerons votre suggestion.",
		it: "Grazie! Valuteremo il tuo suggerimento.",
	},
	"broadcast.prompt": {
		en: "Send the message to broadcast to every user:",
		ru: "Отправьте сообщение для рассылки всем пользователям:",
	},
	"broadcast.sent": {
		en: "✅ Broadcast queued for %d chats.",
		ru: "✅ Рассылка поставлена в очередь для %d чатов.",
	},
	"generate.rules": {
		en: "<b>Describe the game you want.</b>\nWho is playing, the mood, the topics to cover or avoid. One credit is spent when the game is ready.",
		ru: "<b>Опишите игру, которую хотите.</b>\nКто играет, настроение, темы, которые стоит затронуть или избежать. Кредит списывается, когда игра готова.",
		fr: "<b>Décrivez le jeu que vous voulez.</b>\nQui joue, l'ambiance, les sujets à aborder ou à éviter. Un crédit est débité quand le jeu est prêt.",
		it: "<b>Descrivi il gioco che desideri.</b>\nChi gioca, l'atmosfera, gli argomenti da trattare o evitare. Un credito viene speso quando il gioco è pronto.",
	},
	"generate.invalid": {
		en: "Please describe the game in 3 to 500 characters.",
		ru: "Опишите игру в 3–500 символах.",
		fr: "Décrivez le jeu en 3 à 500 caractères.",
		it: "Descrivi il gioco in 3-500 caratteri.",
	},
	"generate.started": {
		en: "⏳ Generating your game. I will message you when it's ready.",
		ru: "⏳ Создаю вашу игру. Я напишу, когда она будет готова.",
		fr: "⏳ Génération de votre jeu en cours. Je vous écris dès qu'il est prêt.",
		it: "⏳ Sto generando il tuo gioco. Ti scrivo quando è pronto.",
	},
	"generate.no_credits": {
		en: "You have no generation credits left.",
		ru: "У вас не осталось кредитов на генерацию.",
		fr: "Vous n'avez plus de crédits de génération.",
		it: "Non hai più crediti di generazione.",
	},
	"generate.completed": {
		en: "🎉 Your game %q is ready!",
		ru: "🎉 Ваша игра %q готова!",
		fr: "🎉 Votre jeu %q est prêt !",
		it: "🎉 Il tuo gioco %q è pronto!",
	},
	"generate.failed": {
		en: "😕 The game could not be generated. No credits were spent.",
		ru: "😕 Не удалось создать игру. Кредиты не списаны.",
		fr: "😕 Le jeu n'a pas pu être généré. Aucun crédit n'a été débité.",
		it: "😕 Non è stato possibile generare il gioco. Nessun credito è stato speso.",
	},
	"credits.updated": {
		en: "💳 Your balance: %d credits.",
		ru: "💳 Ваш баланс: %d кредитов.",
		fr: "💳 Votre solde : %d crédits.",
		it: "💳 Il tuo saldo: %d crediti.",
	},
	"error.generic": {
		en: "Something went wrong. Please try again in a moment.",
		ru: "Что-то пошло не так. Попробуйте ещё раз чуть позже.",
		fr: "Une erreur s'est produite. Réessayez dans un instant.",
		it: "Qualcosa è andato storto. Riprova tra poco.",
	},
	"cmd.start":    {en: "Open the game", ru: "Открыть игру", fr: "Ouvrir le jeu", it: "Apri il gioco"},
	"cmd.help":     {en: "How it works", ru: "Как это работает", fr: "Comment ça marche", it: "Come funziona"},
	"cmd.language": {en: "Change language", ru: "Сменить язык", fr: "Changer de langue", it: "Cambia lingua"},
	"cmd.suggest":  {en: "Suggest a question", ru: "Предложить вопрос", fr: "Proposer une question", it: "Suggerisci una domanda"},
	"cmd.generate": {en: "Generate a new game", ru: "Создать новую игру", fr: "Générer un nouveau jeu", it: "Genera un nuovo gioco"},
}
