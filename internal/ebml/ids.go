package ebml

// ID is a Matroska/WebM element identifier as it appears on the wire,
// including the length-marker bits (e.g. Segment is 0x18538067).
type ID uint32

// Element IDs understood by this package. Anything else passes through
// as an opaque scalar.
const (
	// EBML header
	IDEBML               ID = 0x1A45DFA3
	IDEBMLVersion        ID = 0x4286
	IDEBMLReadVersion    ID = 0x42F7
	IDEBMLMaxIDLength    ID = 0x42F2
	IDEBMLMaxSizeLength  ID = 0x42F3
	IDDocType            ID = 0x4282
	IDDocTypeVersion     ID = 0x4287
	IDDocTypeReadVersion ID = 0x4285

	// Segment and top-level sections
	IDSegment     ID = 0x18538067
	IDSeekHead    ID = 0x114D9B74
	IDInfo        ID = 0x1549A966
	IDTracks      ID = 0x1654AE6B
	IDChapters    ID = 0x1043A770
	IDCluster     ID = 0x1F43B675
	IDCues        ID = 0x1C53BB6B
	IDAttachments ID = 0x1941A469
	IDTags        ID = 0x1254C367

	// Info children
	IDSegmentUID    ID = 0x73A4
	IDTimecodeScale ID = 0x2AD7B1
	IDDuration      ID = 0x4489
	IDDateUTC       ID = 0x4461
	IDTitle         ID = 0x7BA9
	IDMuxingApp     ID = 0x4D80
	IDWritingApp    ID = 0x5741

	// Tracks children
	IDTrackEntry    ID = 0xAE
	IDTrackNumber   ID = 0xD7
	IDTrackUID      ID = 0x73C5
	IDTrackType     ID = 0x83
	IDCodecID       ID = 0x86
	IDCodecPrivate  ID = 0x63A2
	IDVideo         ID = 0xE0
	IDAudio         ID = 0xE1
	IDPixelWidth    ID = 0xB0
	IDPixelHeight   ID = 0xBA
	IDDisplayWidth  ID = 0x54B0
	IDDisplayHeight ID = 0x54BA

	// Cluster children
	IDTimecode    ID = 0xE7
	IDSimpleBlock ID = 0xA3
	IDBlockGroup  ID = 0xA0
	IDBlock       ID = 0xA1

	// Tags children
	IDTag             ID = 0x7373
	IDTargets         ID = 0x63C0
	IDTargetTypeValue ID = 0x68CA
	IDTargetType      ID = 0x63CA
	IDSimpleTag       ID = 0x67C8
	IDTagName         ID = 0x45A3
	IDTagString       ID = 0x4487
	IDTagLanguage     ID = 0x447A
	IDTagDefault      ID = 0x4484

	// Misc
	IDVoid  ID = 0xEC
	IDCRC32 ID = 0xBF
)

// masterIDs lists the elements whose payload is a sequence of child
// elements. The reader descends into these and surfaces Start/End events;
// every other element is delivered as a scalar with its raw payload.
var masterIDs = map[ID]bool{
	IDEBML:        true,
	IDSegment:     true,
	IDSeekHead:    true,
	IDInfo:        true,
	IDTracks:      true,
	IDChapters:    true,
	IDCluster:     true,
	IDCues:        true,
	IDAttachments: true,
	IDTags:        true,
	IDTrackEntry:  true,
	IDVideo:       true,
	IDAudio:       true,
	IDBlockGroup:  true,
	IDTag:         true,
	IDTargets:     true,
	IDSimpleTag:   true,
}

// IsMaster reports whether id identifies a master (container) element.
func (id ID) IsMaster() bool {
	return masterIDs[id]
}

var idNames = map[ID]string{
	IDEBML:          "EBML",
	IDSegment:       "Segment",
	IDSeekHead:      "SeekHead",
	IDInfo:          "Info",
	IDTracks:        "Tracks",
	IDChapters:      "Chapters",
	IDCluster:       "Cluster",
	IDCues:          "Cues",
	IDAttachments:   "Attachments",
	IDTags:          "Tags",
	IDTimecodeScale: "TimecodeScale",
	IDDuration:      "Duration",
	IDTitle:         "Title",
	IDTrackEntry:    "TrackEntry",
	IDVideo:         "Video",
	IDAudio:         "Audio",
	IDPixelWidth:    "PixelWidth",
	IDPixelHeight:   "PixelHeight",
	IDDisplayWidth:  "DisplayWidth",
	IDDisplayHeight: "DisplayHeight",
	IDTag:           "Tag",
	IDTargets:       "Targets",
	IDSimpleTag:     "SimpleTag",
	IDTagName:       "TagName",
	IDTagString:     "TagString",
}

// String returns the element name for known IDs and the hex value otherwise.
func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return "0x" + hexID(id)
}

func hexID(id ID) string {
	const digits = "0123456789ABCDEF"
	var buf [8]byte
	n := 0
	for shift := 28; shift >= 0; shift -= 4 {
		d := byte(id>>uint(shift)) & 0xF
		if n == 0 && d == 0 && shift > 0 {
			continue
		}
		buf[n] = digits[d]
		n++
	}
	return string(buf[:n])
}
