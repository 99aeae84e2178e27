package correlate

import "github.com/papapumpkin/ziwei/internal/chart"

// AnnotatedStar is a star together with every mutagen tag it carries across
// the natal chart and the scopes of one snapshot.
type AnnotatedStar struct {
	Name       string   `json:"name"`
	Type       *string  `json:"type"`
	Scope      *string  `json:"scope"`
	Brightness *string  `json:"brightness"`
	Mutagen    *string  `json:"mutagen"`
	Tags       []string `json:"tags"`
}

// Annotate looks the star up in each map in order and concatenates the
// matches. The returned entry shares no memory with the star or the maps.
func Annotate(star chart.Star, maps []TagMap) AnnotatedStar {
	tags := []string{}
	for _, m := range maps {
		tags = append(tags, m[star.Name]...)
	}
	return AnnotatedStar{
		Name:       star.Name,
		Type:       nullable(star.Type),
		Scope:      nullable(star.Scope),
		Brightness: nullable(star.Brightness),
		Mutagen:    nullable(star.Mutagen),
		Tags:       tags,
	}
}

func annotateAll(stars []chart.Star, maps []TagMap) []AnnotatedStar {
	out := make([]AnnotatedStar, 0, len(stars))
	for _, s := range stars {
		out = append(out, Annotate(s, maps))
	}
	return out
}

func (a AnnotatedStar) clone() AnnotatedStar {
	a.Tags = append([]string{}, a.Tags...)
	return a
}
