package vigil

import "fmt"

// Level represents how far an excursion has escalated: the number of
// consecutive notification intervals that have passed without a
// notification, capped at [LevelFatal].
type Level uint32

const (
	// LevelOK indicates the watched code has notified within the
	// current interval. It is the initial level and the only level
	// reachable by reset.
	LevelOK Level = iota
	// LevelWarn indicates a single missed interval, usually a
	// temporary glitch or slowdown.
	LevelWarn
	// LevelError indicates multiple missed intervals, suggesting the
	// watched code may have stalled.
	LevelError
	// LevelFatal indicates the watched code has been unresponsive for
	// at least three intervals and is likely stalled for good.
	LevelFatal
)

var (
	strLevelMap = map[Level]string{
		LevelOK:    "ok",
		LevelWarn:  "warn",
		LevelError: "error",
		LevelFatal: "fatal",
	}

	typeLevelMap = map[string]Level{
		"ok":    LevelOK,
		"warn":  LevelWarn,
		"error": LevelError,
		"fatal": LevelFatal,
	}
)

// ParseLevel returns the [Level] named by s.
func ParseLevel(s string) (Level, error) {
	if l, ok := typeLevelMap[s]; ok {
		return l, nil
	}
	return LevelOK, fmt.Errorf("vigil: unknown level %q", s)
}

func (l Level) String() string {
	if s, ok := strLevelMap[l]; ok {
		return s
	}
	return "unknown"
}

// IsValid reports whether l is one of the four defined levels.
func (l Level) IsValid() bool {
	_, ok := strLevelMap[l]
	return ok
}

func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

func (l *Level) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
