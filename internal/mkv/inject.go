package mkv

import (
	"io"
	"sort"

	"github.com/marco/videoSort/internal/ebml"
)

// sectionsAfterInfo are the top-level segment sections a synthesized Info
// must precede, in stream order: whichever of these starts first marks the
// insertion point.
var sectionsAfterInfo = map[ebml.ID]bool{
	ebml.IDTracks:      true,
	ebml.IDChapters:    true,
	ebml.IDCluster:     true,
	ebml.IDCues:        true,
	ebml.IDAttachments: true,
	ebml.IDTags:        true,
}

// Inject rewrites the Matroska stream from src to dst in a single pass:
// the Info section ends up with exactly one Title equal to title, the Tags
// section is merged with the reserved-key dictionary, and every other
// element passes through untouched in original order. Missing Info and
// Tags sections are synthesized; an existing tag whose name collides with
// a dictionary key is dropped in favor of the dictionary value. Dictionary
// entries with empty values are suppressed but still displace stale tags
// of the same name.
//
// On any decode or encode error the rewrite aborts with no output
// guarantee; the caller must discard the partially written sink.
func Inject(src io.Reader, dst io.Writer, title string, tags map[string]string) error {
	r := ebml.NewReader(src, ebml.IDSimpleTag)
	w := ebml.NewWriter(dst)

	titleTag := ebml.NewString(ebml.IDTitle, title)

	infoWritten := false
	tagsWritten := false
	inInfo := false
	inTags := false
	inTag := false

	// A Tag entry's leading events (its Start, Targets, ...) are held back
	// until the entry proves to contain a surviving SimpleTag. Entries left
	// with only displaced tags vanish instead of surviving as empty shells,
	// which keeps repeated injections stable.
	var pending []ebml.Tag
	pendingFlushed := false
	flushPending := func() error {
		for _, p := range pending {
			if err := w.Write(p); err != nil {
				return err
			}
		}
		pending = nil
		pendingFlushed = true
		return nil
	}

	for {
		t, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if t.ID == ebml.IDSegment && t.Mode == ebml.ModeEnd {
			// A Tags section that never appeared is appended before the
			// segment closes. A missing Info is only ever synthesized ahead
			// of a source section, never as a standalone fix-up.
			if !tagsWritten && hasTagValues(tags) {
				if err := w.Write(ebml.Start(ebml.IDTags)); err != nil {
					return err
				}
				if err := writeTagEntry(w, tags); err != nil {
					return err
				}
				if err := w.Write(ebml.End(ebml.IDTags)); err != nil {
					return err
				}
				tagsWritten = true
			}
			if err := w.Write(t); err != nil {
				return err
			}
			continue
		}

		if t.ID == ebml.IDInfo {
			switch t.Mode {
			case ebml.ModeStart:
				inInfo = true
			case ebml.ModeEnd:
				if err := w.Write(titleTag); err != nil {
					return err
				}
				infoWritten = true
				inInfo = false
			}
			if err := w.Write(t); err != nil {
				return err
			}
			continue
		}

		if !infoWritten && t.Mode == ebml.ModeStart && sectionsAfterInfo[t.ID] {
			if err := w.Write(ebml.Full(ebml.IDInfo, titleTag)); err != nil {
				return err
			}
			infoWritten = true
		}

		if t.ID == ebml.IDTags {
			switch t.Mode {
			case ebml.ModeStart:
				inTags = true
			case ebml.ModeEnd:
				if err := writeTagEntry(w, tags); err != nil {
					return err
				}
				tagsWritten = true
				inTags = false
			}
			if err := w.Write(t); err != nil {
				return err
			}
			continue
		}

		if inInfo {
			if t.ID == ebml.IDTitle {
				continue // replaced at the end of the section
			}
			if err := w.Write(t); err != nil {
				return err
			}
			continue
		}

		if inTags {
			switch {
			case t.ID == ebml.IDSimpleTag && t.Mode == ebml.ModeFull && inTag:
				if name, ok := t.FindChild(ebml.IDTagName); ok {
					if _, reserved := tags[name.String()]; reserved {
						continue // displaced by the dictionary value
					}
				}
				if !pendingFlushed {
					if err := flushPending(); err != nil {
						return err
					}
				}
				if err := w.Write(t); err != nil {
					return err
				}
				continue

			case t.ID == ebml.IDTag && t.Mode == ebml.ModeStart:
				inTag = true
				pending = append(pending[:0], t)
				pendingFlushed = false
				continue

			case t.ID == ebml.IDTag && t.Mode == ebml.ModeEnd:
				inTag = false
				pending = nil
				if pendingFlushed {
					if err := w.Write(t); err != nil {
						return err
					}
				}
				continue

			default:
				if inTag && !pendingFlushed {
					pending = append(pending, t)
					continue
				}
				if err := w.Write(t); err != nil {
					return err
				}
				continue
			}
		}

		if err := w.Write(t); err != nil {
			return err
		}
	}

	return w.Close()
}

// writeTagEntry appends one Tag entry holding every non-empty dictionary
// value under a whole-file Targets scope. Keys are written in sorted order
// so repeated runs produce identical bytes. Nothing is written when every
// value is empty.
func writeTagEntry(w *ebml.Writer, tags map[string]string) error {
	keys := make([]string, 0, len(tags))
	for k, v := range tags {
		if v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	if err := w.Write(ebml.Start(ebml.IDTag)); err != nil {
		return err
	}
	if err := w.Write(ebml.Full(ebml.IDTargets)); err != nil {
		return err
	}
	for _, k := range keys {
		entry := ebml.Full(ebml.IDSimpleTag,
			ebml.NewString(ebml.IDTagName, k),
			ebml.NewString(ebml.IDTagString, tags[k]),
		)
		if err := w.Write(entry); err != nil {
			return err
		}
	}
	return w.Write(ebml.End(ebml.IDTag))
}

func hasTagValues(tags map[string]string) bool {
	for _, v := range tags {
		if v != "" {
			return true
		}
	}
	return false
}
