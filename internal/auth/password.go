package auth

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RandomPassword is for accounts created from chat, which never log in by password.
func RandomPassword() string {
	return uuid.NewString()
}

// 6 words from 256 give 48 bits.
const phraseWords = 6

var wordlist = [256]string{
	"acorn", "actor", "admiral", "agate", "album", "alcove", "alder", "alloy",
	"almond", "alpaca", "amber", "anchor", "anemone", "angler", "antler", "anvil",
	"apple", "apricot", "arbor", "arcade", "archer", "arctic", "arrow", "aspen",
	"atlas", "attic", "aurora", "autumn", "avocado", "badger", "bagel", "bakery",
	"balcony", "ballad", "bamboo", "banjo", "banner", "barley", "barrel", "basil",
	"basket", "beacon", "beaver", "bellows", "berry", "biscuit", "bison", "blanket",
	"blossom", "bonfire", "bramble", "breeze", "brick", "bridge", "brook", "bucket",
	"buffalo", "bugle", "bumble", "butter", "cabin", "cactus", "camel", "camera",
	"canal", "candle", "canoe", "canyon", "captain", "caramel", "cargo", "carpet",
	"carrot", "castle", "cedar", "cello", "chalk", "chapel", "cherry", "chestnut",
	"chimney", "cider", "cinder", "circus", "citrus", "clover", "cobalt", "cobble",
	"coconut", "comet", "compass", "copper", "coral", "cotton", "cougar", "cradle",
	"crater", "cricket", "crystal", "cuckoo", "cypress", "daisy", "dancer", "delta",
	"denim", "desert", "dingo", "dolphin", "domino", "donkey", "dragon", "drifter",
	"drum", "dune", "eagle", "easel", "echo", "eclipse", "elbow", "elder",
	"ember", "emerald", "engine", "fable", "falcon", "fathom", "feather", "fennel",
	"fern", "ferry", "fiddle", "fig", "flannel", "flint", "forest", "fossil",
	"fountain", "fox", "freckle", "frost", "galaxy", "garden", "garnet", "gazelle",
	"geyser", "ginger", "giraffe", "glacier", "globe", "gondola", "gopher", "granite",
	"grape", "gravel", "gull", "hammock", "harbor", "harvest", "hazel", "heron",
	"hickory", "hollow", "honey", "horizon", "husky", "igloo", "iguana", "indigo",
	"island", "ivory", "jackal", "jaguar", "jasmine", "jelly", "jester", "jigsaw",
	"journey", "juniper", "kayak", "kelp", "kernel", "kettle", "kiwi", "koala",
	"ladder", "lagoon", "lantern", "larch", "lemon", "lentil", "lilac", "linen",
	"lizard", "llama", "lobster", "locket", "lotus", "lumber", "lynx", "magnet",
	"mango", "maple", "marble", "marigold", "meadow", "melon", "meteor", "mint",
	"mitten", "monsoon", "mosaic", "moss", "muffin", "mural", "nectar", "needle",
	"nutmeg", "oasis", "oatmeal", "ocean", "olive", "onyx", "opal", "orbit",
	"orchid", "osprey", "otter", "oyster", "paddle", "pagoda", "palette", "panda",
	"papaya", "parrot", "pebble", "pelican", "pepper", "pigeon", "pillow", "pine",
	"planet", "plum", "pollen", "poppy", "porch", "prairie", "pretzel", "prism",
	"puffin", "pumpkin", "quail", "quartz", "quill", "quilt", "rabbit", "radish",
}

// NewSecretPhrase returns six random words joined by spaces.
func NewSecretPhrase() (string, error) {
	words := make([]string, phraseWords)
	for i := range words {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(wordlist))))
		if err != nil {
			return "", err
		}
		words[i] = wordlist[n.Int64()]
	}
	return strings.Join(words, " "), nil
}
