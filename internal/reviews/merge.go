package reviews

import "github.com/wpbr/reviewproxy/internal/trustpilot"

// Profile is the flat document produced by merging every source.
type Profile map[string]any

// Source identifies one upstream document taking part in a merge.
type Source int

const (
	SourceIdentity Source = iota
	SourceReviewProfile
	SourcePublicProfile
	SourceWebLinks
	SourceLogo
	SourceReviews
)

var sourceNames = [...]string{"identity", "review_profile", "public_profile", "web_links", "logo", "reviews"}

func (s Source) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return "unknown"
	}
	return sourceNames[s]
}

// MergeOrder is the precedence of sources, lowest first. A key present in
// several documents takes the value of the latest one here.
var MergeOrder = []Source{
	SourceIdentity,
	SourceReviewProfile,
	SourcePublicProfile,
	SourceWebLinks,
	SourceLogo,
	SourceReviews,
}

// Merge flattens docs into one Profile following MergeOrder. Missing
// sources are skipped. Values are copied shallowly.
func Merge(docs map[Source]trustpilot.Document) Profile {
	size := 0
	for _, d := range docs {
		size += len(d)
	}
	out := make(Profile, size)
	for _, src := range MergeOrder {
		for k, v := range docs[src] {
			out[k] = v
		}
	}
	return out
}
