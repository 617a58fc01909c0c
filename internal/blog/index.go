package blog

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"
)

// IndexEntry is one item of the publication index. The set of variants is
// closed: PostEntry, TalkEntry and ExternalEntry.
type IndexEntry interface {
	EntryKind() Kind
	EntryTitle() string
	// EntryLink is the output path for documents and the configured path for
	// external links.
	EntryLink() string
	EntryDate() (Date, bool)
	EntryMetadata() Metadata
	json.Marshaler

	indexEntry()
}

// PostEntry wraps a post.
type PostEntry struct{ Post *Document }

// TalkEntry wraps a talk.
type TalkEntry struct{ Talk *Document }

// ExternalEntry wraps an external link.
type ExternalEntry struct{ External ExternalLink }

func (PostEntry) indexEntry()     {}
func (TalkEntry) indexEntry()     {}
func (ExternalEntry) indexEntry() {}

func (e PostEntry) EntryKind() Kind              { return KindPost }
func (e PostEntry) EntryTitle() string           { return e.Post.Metadata.Title }
func (e PostEntry) EntryLink() string            { return e.Post.Path }
func (e PostEntry) EntryDate() (Date, bool)      { return e.Post.SortDate() }
func (e PostEntry) EntryMetadata() Metadata      { return e.Post.Metadata }
func (e PostEntry) MarshalJSON() ([]byte, error) { return json.Marshal(e.Post) }

func (e TalkEntry) EntryKind() Kind              { return KindTalk }
func (e TalkEntry) EntryTitle() string           { return e.Talk.Metadata.Title }
func (e TalkEntry) EntryLink() string            { return e.Talk.Path }
func (e TalkEntry) EntryDate() (Date, bool)      { return e.Talk.SortDate() }
func (e TalkEntry) EntryMetadata() Metadata      { return e.Talk.Metadata }
func (e TalkEntry) MarshalJSON() ([]byte, error) { return json.Marshal(e.Talk) }

func (e ExternalEntry) EntryKind() Kind              { return KindExternal }
func (e ExternalEntry) EntryTitle() string           { return e.External.Metadata.Title }
func (e ExternalEntry) EntryLink() string            { return e.External.Path }
func (e ExternalEntry) EntryDate() (Date, bool)      { return e.External.SortDate() }
func (e ExternalEntry) EntryMetadata() Metadata      { return e.External.Metadata }
func (e ExternalEntry) MarshalJSON() ([]byte, error) { return json.Marshal(e.External) }

// Assemble merges posts, talks and external links into one ordered index.
//
// Entries are ordered by date descending with absent dates last, then by
// title, link and kind; remaining ties keep input order. Only entries whose
// full values are equal collapse into one.
func Assemble(posts, talks []*Document, externals []ExternalLink) []IndexEntry {
	entries := make([]IndexEntry, 0, len(posts)+len(talks)+len(externals))
	for _, post := range posts {
		if post != nil {
			entries = append(entries, PostEntry{Post: post})
		}
	}
	for _, talk := range talks {
		if talk != nil {
			entries = append(entries, TalkEntry{Talk: talk})
		}
	}
	for _, link := range externals {
		entries = append(entries, ExternalEntry{External: link})
	}

	slices.SortStableFunc(entries, compareEntries)
	return dedupe(entries)
}

// Tags returns the non-empty tags of the entry.
func Tags(entry IndexEntry) []string {
	var tags []string
	for _, tag := range entry.EntryMetadata().Tags {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func compareEntries(a, b IndexEntry) int {
	return compareKeys(keyOf(a), keyOf(b))
}

type sortKey struct {
	date    Date
	hasDate bool
	title   string
	link    string
	kind    int
}

func keyOf(entry IndexEntry) sortKey {
	date, ok := entry.EntryDate()
	return sortKey{
		date:    date,
		hasDate: ok,
		title:   entry.EntryTitle(),
		link:    entry.EntryLink(),
		kind:    entry.EntryKind().rank(),
	}
}

// compareKeys orders newest first. An absent date is older than any date.
func compareKeys(a, b sortKey) int {
	switch {
	case a.hasDate && !b.hasDate:
		return -1
	case !a.hasDate && b.hasDate:
		return 1
	case a.hasDate && b.hasDate:
		if c := a.date.Compare(b.date); c != 0 {
			return -c
		}
	}
	if c := strings.Compare(a.title, b.title); c != 0 {
		return c
	}
	if c := strings.Compare(a.link, b.link); c != 0 {
		return c
	}
	return cmpInt(a.kind, b.kind)
}

// dedupe drops entries equal in full value to an earlier entry. Equal values
// share a sort key, so only runs of tied keys need scanning.
func dedupe(entries []IndexEntry) []IndexEntry {
	out := entries[:0]
	runStart := 0
	for _, entry := range entries {
		if len(out) > runStart && compareEntries(out[runStart], entry) != 0 {
			runStart = len(out)
		}
		duplicate := false
		for _, kept := range out[runStart:] {
			if reflect.DeepEqual(kept, entry) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, entry)
		}
	}
	return out
}
