package controlroom

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the cue sets the linguistic engines match against. The
// phrase lists are tuned data, not algorithm: load replacements from yaml
// without touching detector logic. Pattern cues are case-insensitive
// substrings; echo cues are regular expressions so the matched span can be
// captured verbatim.
type Lexicon struct {
	Patterns    map[PatternKind][]string  `yaml:"patterns"`
	Echoes      map[EchoCategory][]string `yaml:"echoes"`
	BannedTerms []string                  `yaml:"banned_terms"`

	echoRes map[EchoCategory][]*regexp.Regexp
}

// LoadLexicon parses a yaml lexicon document. Unknown fields and unknown
// pattern or echo categories are rejected; an engine must not silently carry
// cues it cannot attribute.
func LoadLexicon(r io.Reader) (*Lexicon, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var lex Lexicon
	if err := dec.Decode(&lex); err != nil {
		return nil, fmt.Errorf("failed to decode lexicon: %w", err)
	}

	for kind := range lex.Patterns {
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: lexicon entry %q", ErrUnknownPattern, kind)
		}
	}
	for category := range lex.Echoes {
		if !category.Valid() {
			return nil, fmt.Errorf("lexicon echo category %q is not recognized", category)
		}
	}

	if err := lex.compile(); err != nil {
		return nil, err
	}
	return &lex, nil
}

// compile builds the echo regexps. Called once at load time so detection
// stays allocation-light per turn.
func (l *Lexicon) compile() error {
	l.echoRes = make(map[EchoCategory][]*regexp.Regexp, len(l.Echoes))
	for category, exprs := range l.Echoes {
		for _, expr := range exprs {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				return fmt.Errorf("failed to compile echo cue %q: %w", expr, err)
			}
			l.echoRes[category] = append(l.echoRes[category], re)
		}
	}
	return nil
}

// DefaultLexicon returns the built-in cue sets.
func DefaultLexicon() *Lexicon {
	lex := &Lexicon{
		Patterns: map[PatternKind][]string{
			PatternMinimization: {
				"it wasn't that bad",
				"wasn't a big deal",
				"not a big deal",
				"no big deal",
				"it was nothing",
				"barely even",
				"it's fine",
				"nothing serious",
			},
			PatternAbsolutist: {
				"always",
				"never",
				"everyone",
				"no one ever",
				"nothing ever",
				"every single time",
			},
			PatternPassiveShift: {
				"mistakes were made",
				"things were said",
				"words were exchanged",
				"it got broken",
				"was done to",
				"things were thrown",
			},
			PatternActorOmission: {
				"things got out of hand",
				"the situation escalated",
				"stuff happened",
				"it all fell apart",
				"one thing led to another",
			},
			PatternHumorDeflection: {
				"funny story",
				"you had to be there",
				"just kidding",
				"i'm joking",
				"kind of hilarious",
				"haha",
			},
			PatternFutureEvasion: {
				"i'll try",
				"going forward",
				"i promise",
				"from now on",
				"i'm going to change",
				"i will do better",
				"be better",
				"next time",
			},
			PatternSomaticLeakage: {
				"can't breathe",
				"i'm shaking",
				"my chest tightens",
				"my chest gets tight",
				"stomach drops",
				"hands are shaking",
				"heart is racing",
				"feel sick",
				"throat closes",
			},
			PatternInevitability: {
				"no choice",
				"i had to",
				"couldn't have done anything",
				"it was inevitable",
				"what else could i do",
				"forced to",
				"nothing i could do",
			},
		},
		Echoes: map[EchoCategory][]string{
			EchoMinimizer: {
				`it wasn'?t that bad`,
				`not (?:such )?a big deal`,
				`it was nothing`,
			},
			EchoInevitability: {
				`i had no choice`,
				`there was nothing i could do`,
				`i had to [a-z' ]+`,
			},
			EchoSelfBlame: {
				`it(?:'s| is| was) (?:all )?my fault`,
				`i deserved it`,
				`i ruined [a-z' ]+`,
			},
			EchoAgencyAvoidance: {
				`things (?:just )?happened`,
				`it (?:just )?happened to me`,
				`i found myself [a-z' ]+`,
			},
		},
		BannedTerms: []string{
			"diagnos",
			"disorder",
			"pathological",
			"narcissist",
			"clinical",
			"symptom",
			"prognosis",
			"dissociat",
		},
	}

	// Built-in cues are known-good; compile cannot fail here.
	if err := lex.compile(); err != nil {
		panic(fmt.Sprintf("default lexicon failed to compile: %v", err))
	}
	return lex
}
