package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Play       string
	Pause      string
	Loading    string
	Volume     string
	VolumeMute string
	Single     string
	Continuous string
	RepeatOne  string
	Reciter    string
	Locked     string
}

var (
	nerdIcons = Icons{
		Play:       "\uf04b",  // nf-fa-play
		Pause:      "\uf04c",  // nf-fa-pause
		Loading:    "󰔟",       // nf-md-timer_sand
		Volume:     "󰕾",       // nf-md-volume_high
		VolumeMute: "󰖁",       // nf-md-volume_off
		Single:     "󰑗",       // nf-md-repeat_off
		Continuous: "󰑖",       // nf-md-repeat
		RepeatOne:  "󰑘",       // nf-md-repeat_once
		Reciter:    "\uf130 ", // nf-fa-microphone
		Locked:     "\uf023",  // nf-fa-lock
	}

	unicodeIcons = Icons{
		Play:       "▶",
		Pause:      "⏸",
		Loading:    "⏳",
		Volume:     "🔊",
		VolumeMute: "🔇",
		Single:     "⏹",
		Continuous: "🔁",
		RepeatOne:  "🔂",
		Reciter:    "🎙 ",
		Locked:     "🔒",
	}

	noneIcons = Icons{
		Play:       ">",
		Pause:      "||",
		Loading:    "...",
		Volume:     "vol",
		VolumeMute: "mute",
		Single:     "[1x]",
		Continuous: "[>>]",
		RepeatOne:  "[R]",
		Reciter:    "",
		Locked:     "[locked]",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init initializes the icons based on the style.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	case StyleNone:
		current = noneIcons
	default:
		current = noneIcons
	}
}

func Play() string       { return current.Play }
func Pause() string      { return current.Pause }
func Loading() string    { return current.Loading }
func Volume() string     { return current.Volume }
func VolumeMute() string { return current.VolumeMute }
func Locked() string     { return current.Locked }

// Mode returns the icon for a playback mode name as produced by
// playback.Mode.String.
func Mode(name string) string {
	switch name {
	case "Continuous":
		return current.Continuous
	case "Repeat":
		return current.RepeatOne
	default:
		return current.Single
	}
}

// FormatReciter formats a reciter name with the appropriate icon.
func FormatReciter(name string) string {
	if current == noneIcons {
		return name
	}
	return current.Reciter + name
}
