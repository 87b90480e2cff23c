package tags

import "strings"

// MatchKind records how a lookup resolved: by primary name, by alias,
// or by fallback default.
type MatchKind string

const (
	MatchPrimary MatchKind = "primary"
	MatchAlias   MatchKind = "alias"
	MatchDefault MatchKind = "default"
)

// PromptTag is the reduced tag view embedded in the classification
// prompt. Internal commentary is deliberately excluded.
type PromptTag struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	ShortForm   string   `json:"short_form,omitempty"`
	Description string   `json:"description,omitempty"`
	Type        Type     `json:"type"`
}

// Index provides O(1) case-insensitive lookups over a snapshot's tags.
// It is immutable after BuildIndex and safe for concurrent use.
type Index struct {
	byName         map[string]*Tag
	byAlias        map[string]*Tag
	byType         map[Type][]*Tag
	tags           []Tag
	aliasCollision int
}

// BuildIndex constructs an Index from a flat tag list. Alias collisions
// across distinct tags resolve to whichever tag is indexed last; the
// collision count is retained so callers can surface the ambiguity.
func BuildIndex(list []Tag) *Index {
	idx := &Index{
		byName:  make(map[string]*Tag, len(list)),
		byAlias: make(map[string]*Tag),
		byType:  make(map[Type][]*Tag),
		tags:    list,
	}

	for i := range idx.tags {
		tag := &idx.tags[i]
		idx.byName[strings.ToLower(tag.Name)] = tag
		idx.byType[tag.Type] = append(idx.byType[tag.Type], tag)

		for _, alias := range tag.Aliases {
			key := strings.ToLower(alias)
			if prev, ok := idx.byAlias[key]; ok && prev.ID != tag.ID {
				idx.aliasCollision++
			}
			idx.byAlias[key] = tag
		}
	}

	return idx
}

// Len returns the number of indexed tags.
func (idx *Index) Len() int {
	return len(idx.tags)
}

// AliasCollisions returns the number of aliases claimed by more than one tag.
func (idx *Index) AliasCollisions() int {
	return idx.aliasCollision
}

// LookupByName resolves text against primary tag names, case-insensitively.
func (idx *Index) LookupByName(text string) *Tag {
	return idx.byName[strings.ToLower(strings.TrimSpace(text))]
}

// LookupByAlias resolves text against tag aliases, case-insensitively.
func (idx *Index) LookupByAlias(text string) *Tag {
	return idx.byAlias[strings.ToLower(strings.TrimSpace(text))]
}

// Resolve tries primary names first, then aliases. Returns the matched
// tag and the match kind, or (nil, "") when nothing matches.
func (idx *Index) Resolve(text string) (*Tag, MatchKind) {
	if tag := idx.LookupByName(text); tag != nil {
		return tag, MatchPrimary
	}
	if tag := idx.LookupByAlias(text); tag != nil {
		return tag, MatchAlias
	}
	return nil, ""
}

// ByType returns the tags of the given type in snapshot order.
func (idx *Index) ByType(t Type) []*Tag {
	return idx.byType[t]
}

// ForPrompt returns the prompt view of every indexed tag in snapshot order.
func (idx *Index) ForPrompt() []PromptTag {
	view := make([]PromptTag, 0, len(idx.tags))
	for i := range idx.tags {
		tag := &idx.tags[i]
		view = append(view, PromptTag{
			Name:        tag.Name,
			Aliases:     tag.Aliases,
			ShortForm:   tag.ShortForm,
			Description: tag.PublicDescription,
			Type:        tag.Type,
		})
	}
	return view
}
