package slate

import (
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	MagicString = "SLATEBOARDDOC"
	VersionV1   = uint16(1)

	flagRandomAccess = uint16(1 << 0)
	headerSize       = len(MagicString) + 2 + 2 + 8 + 4

	secureMagic      = "SLATEBOARDSEC"
	secureVersionV1  = uint16(1)
	secureFlagComp   = uint16(1 << 0)
	secureFlagEnc    = uint16(1 << 1)
	secureSaltSize   = 16
	secureNonceSize  = 12
	secureHeaderSize = len(secureMagic) + 2 + 2 + secureSaltSize + secureNonceSize + 8
	kdfIterations    = 200000

	tocEntSize = 8 + 1 + 8 + 4 + 4
)

type SectionKind uint8

const (
	SectionMetadata SectionKind = 0
	SectionLayer    SectionKind = 1
	SectionStroke   SectionKind = 2
	SectionItem     SectionKind = 3
)

type EncryptionOptions struct {
	Enabled  bool
	Password string
}

type SaveOptions struct {
	Compression bool
	Encryption  EncryptionOptions
}

type LoadOptions struct {
	Password string
}

type EnvelopeInfo struct {
	Wrapped     bool
	Compressed  bool
	Encrypted   bool
	EnvelopeVer uint16
}

var (
	ErrInvalidMagic      = errors.New("slate: invalid magic")
	ErrUnsupportedVer    = errors.New("slate: unsupported version")
	ErrInvalidTOC        = errors.New("slate: invalid toc")
	ErrInvalidRange      = errors.New("slate: invalid section range")
	ErrPasswordRequired  = errors.New("slate: password required")
	ErrInvalidPassword   = errors.New("slate: invalid password")
	ErrInvalidSecureFile = errors.New("slate: invalid secure file")
)

type tocEntry struct {
	ID     uint64
	Kind   SectionKind
	Offset uint64
	Length uint32
	CRC32  uint32
}

type payloadEntry struct {
	Kind    SectionKind
	Payload []byte
}

func Save(path string, p *Project) error {
	return SaveWithOptions(path, p, SaveOptions{})
}

func SaveWithOptions(path string, p *Project, opts SaveOptions) error {
	if p == nil {
		return errors.New("slate: project is nil")
	}
	now := time.Now().Unix()
	if p.Metadata.CreatedUnix == 0 {
		p.Metadata.CreatedUnix = now
	}
	p.Metadata.ModifiedUnix = now

	if err := Validate(p); err != nil {
		return err
	}

	blob := encodeProject(p)

	if opts.Compression {
		var err error
		blob, err = compressBytes(blob)
		if err != nil {
			return err
		}
	}
	if opts.Encryption.Enabled && strings.TrimSpace(opts.Encryption.Password) == "" {
		return ErrPasswordRequired
	}
	if opts.Compression || opts.Encryption.Enabled {
		var err error
		blob, err = encodeSecureEnvelope(blob, opts)
		if err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func Load(path string) (*Project, error) {
	return LoadWithOptions(path, LoadOptions{})
}

func LoadWithOptions(path string, opts LoadOptions) (*Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isSecureEnvelope(b) {
		b, err = decodeSecureEnvelope(b, opts)
		if err != nil {
			return nil, err
		}
	}
	p, err := decodeProject(b)
	if err != nil {
		return nil, err
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func InspectEnvelope(path string) (EnvelopeInfo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return EnvelopeInfo{}, err
	}
	return inspectEnvelopeBytes(b)
}

func encodeProject(p *Project) []byte {
	wb := p.Whiteboard
	if wb == nil {
		wb = NewWhiteboard()
	}

	payloads := make([]payloadEntry, 0, 1+len(wb.Layers)+len(wb.Strokes)+len(wb.Items))
	payloads = append(payloads, payloadEntry{Kind: SectionMetadata, Payload: encodeMetadataSection(p.Metadata, wb.Pen, wb.View)})
	for _, l := range wb.Layers {
		payloads = append(payloads, payloadEntry{Kind: SectionLayer, Payload: encodeLayer(l)})
	}
	for _, s := range wb.Strokes {
		payloads = append(payloads, payloadEntry{Kind: SectionStroke, Payload: encodeStroke(s)})
	}
	for _, it := range wb.Items {
		payloads = append(payloads, payloadEntry{Kind: SectionItem, Payload: encodeItem(it)})
	}

	tocOffset := uint64(headerSize)
	tocLength := len(payloads) * tocEntSize
	out := make([]byte, headerSize+tocLength)
	copy(out[:len(MagicString)], MagicString)

	entries := make([]tocEntry, 0, len(payloads))
	offset := uint64(len(out))
	for i, pe := range payloads {
		entries = append(entries, tocEntry{
			ID:     uint64(i),
			Kind:   pe.Kind,
			Offset: offset,
			Length: uint32(len(pe.Payload)),
			CRC32:  crc32.ChecksumIEEE(pe.Payload),
		})
		out = append(out, pe.Payload...)
		offset += uint64(len(pe.Payload))
	}

	ptr := headerSize
	for _, e := range entries {
		binary.LittleEndian.PutUint64(out[ptr:ptr+8], e.ID)
		out[ptr+8] = byte(e.Kind)
		binary.LittleEndian.PutUint64(out[ptr+9:ptr+17], e.Offset)
		binary.LittleEndian.PutUint32(out[ptr+17:ptr+21], e.Length)
		binary.LittleEndian.PutUint32(out[ptr+21:ptr+25], e.CRC32)
		ptr += tocEntSize
	}

	m := len(MagicString)
	binary.LittleEndian.PutUint16(out[m:m+2], VersionV1)
	binary.LittleEndian.PutUint16(out[m+2:m+4], flagRandomAccess)
	binary.LittleEndian.PutUint64(out[m+4:m+12], tocOffset)
	binary.LittleEndian.PutUint32(out[m+12:m+16], uint32(len(entries)))
	return out
}

func decodeProject(blob []byte) (*Project, error) {
	if len(blob) < headerSize {
		return nil, ErrInvalidMagic
	}
	if string(blob[:len(MagicString)]) != MagicString {
		return nil, ErrInvalidMagic
	}
	m := len(MagicString)
	if v := binary.LittleEndian.Uint16(blob[m : m+2]); v != VersionV1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVer, v)
	}
	tocOffset := binary.LittleEndian.Uint64(blob[m+4 : m+12])
	tocCount := binary.LittleEndian.Uint32(blob[m+12 : m+16])
	if tocOffset > uint64(len(blob)) {
		return nil, ErrInvalidTOC
	}
	if tocOffset+uint64(tocCount)*uint64(tocEntSize) > uint64(len(blob)) {
		return nil, ErrInvalidTOC
	}

	entries := make([]tocEntry, 0, tocCount)
	ptr := int(tocOffset)
	for i := 0; i < int(tocCount); i++ {
		entries = append(entries, tocEntry{
			ID:     binary.LittleEndian.Uint64(blob[ptr : ptr+8]),
			Kind:   SectionKind(blob[ptr+8]),
			Offset: binary.LittleEndian.Uint64(blob[ptr+9 : ptr+17]),
			Length: binary.LittleEndian.Uint32(blob[ptr+17 : ptr+21]),
			CRC32:  binary.LittleEndian.Uint32(blob[ptr+21 : ptr+25]),
		})
		ptr += tocEntSize
	}
	if err := validateEntryRanges(entries, len(blob)); err != nil {
		return nil, err
	}

	p := &Project{Whiteboard: &Whiteboard{Items: []Item{}, Strokes: []Stroke{}}}
	for _, e := range entries {
		payload := blob[e.Offset : e.Offset+uint64(e.Length)]
		if crc32.ChecksumIEEE(payload) != e.CRC32 {
			return nil, fmt.Errorf("slate: crc mismatch for section %d", e.ID)
		}
		switch e.Kind {
		case SectionMetadata:
			meta, pen, view, err := decodeMetadataSection(payload)
			if err != nil {
				return nil, err
			}
			p.Metadata = meta
			p.Whiteboard.Pen = pen
			p.Whiteboard.View = view
		case SectionLayer:
			l, err := decodeLayer(payload)
			if err != nil {
				return nil, err
			}
			p.Whiteboard.Layers = append(p.Whiteboard.Layers, l)
		case SectionStroke:
			s, err := decodeStroke(payload)
			if err != nil {
				return nil, err
			}
			p.Whiteboard.Strokes = append(p.Whiteboard.Strokes, s)
		case SectionItem:
			it, err := decodeItem(payload)
			if err != nil {
				return nil, err
			}
			p.Whiteboard.Items = append(p.Whiteboard.Items, it)
		default:
			// Unknown kinds stay skippable via the TOC.
		}
	}
	return p, nil
}

func validateEntryRanges(entries []tocEntry, fileLen int) error {
	type rng struct{ start, end uint64 }
	ranges := make([]rng, 0, len(entries))
	for _, e := range entries {
		end := e.Offset + uint64(e.Length)
		if e.Offset > uint64(fileLen) || end > uint64(fileLen) {
			return ErrInvalidRange
		}
		ranges = append(ranges, rng{start: e.Offset, end: end})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	for i := 1; i < len(ranges); i++ {
		if ranges[i].start < ranges[i-1].end {
			return ErrInvalidRange
		}
	}
	return nil
}

func encodeMetadataSection(m Metadata, pen Pen, view View) []byte {
	out := make([]byte, 0, 96)
	out = appendString(out, m.Name)
	out = appendU64(out, uint64(m.CreatedUnix))
	out = appendU64(out, uint64(m.ModifiedUnix))
	out = appendU32(out, pen.Color)
	out = appendF64(out, pen.Size)
	out = appendF64(out, pen.Opacity)
	out = appendF64(out, view.X)
	out = appendF64(out, view.Y)
	out = appendF64(out, view.Scale)
	return out
}

func decodeMetadataSection(b []byte) (Metadata, Pen, View, error) {
	var m Metadata
	var pen Pen
	var view View
	var ok bool
	if m.Name, b, ok = readString(b); !ok {
		return m, pen, view, errors.New("slate: malformed metadata name")
	}
	if len(b) < 8+8+4+8*5 {
		return m, pen, view, errors.New("slate: malformed metadata section")
	}
	m.CreatedUnix = int64(binary.LittleEndian.Uint64(b[:8]))
	m.ModifiedUnix = int64(binary.LittleEndian.Uint64(b[8:16]))
	pen.Color = binary.LittleEndian.Uint32(b[16:20])
	pen.Size = readF64(b[20:28])
	pen.Opacity = readF64(b[28:36])
	view.X = readF64(b[36:44])
	view.Y = readF64(b[44:52])
	view.Scale = readF64(b[52:60])
	return m, pen, view, nil
}

func encodeLayer(l Layer) []byte {
	out := make([]byte, 0, 48)
	out = appendString(out, l.ID)
	out = appendString(out, l.Name)
	flags := byte(0)
	if l.Visible {
		flags |= 1
	}
	return append(out, flags)
}

func decodeLayer(b []byte) (Layer, error) {
	var l Layer
	var ok bool
	if l.ID, b, ok = readString(b); !ok {
		return l, errors.New("slate: malformed layer id")
	}
	if l.Name, b, ok = readString(b); !ok {
		return l, errors.New("slate: malformed layer name")
	}
	if len(b) < 1 {
		return l, errors.New("slate: malformed layer flags")
	}
	l.Visible = b[0]&1 != 0
	return l, nil
}

func encodeStroke(s Stroke) []byte {
	out := make([]byte, 0, 64+len(s.Points)*16)
	out = appendString(out, s.ID)
	out = appendString(out, s.LayerID)
	out = appendU32(out, s.Color)
	out = appendF64(out, s.Size)
	out = appendF64(out, s.Opacity)
	flags := byte(0)
	if s.IsEraser {
		flags |= 1
	}
	out = append(out, flags)
	out = appendU32(out, uint32(len(s.Points)))
	for _, p := range s.Points {
		out = appendF64(out, p.X)
		out = appendF64(out, p.Y)
	}
	return out
}

func decodeStroke(b []byte) (Stroke, error) {
	var s Stroke
	var ok bool
	if s.ID, b, ok = readString(b); !ok {
		return s, errors.New("slate: malformed stroke id")
	}
	if s.LayerID, b, ok = readString(b); !ok {
		return s, errors.New("slate: malformed stroke layer")
	}
	if len(b) < 4+8+8+1+4 {
		return s, errors.New("slate: malformed stroke header")
	}
	s.Color = binary.LittleEndian.Uint32(b[:4])
	s.Size = readF64(b[4:12])
	s.Opacity = readF64(b[12:20])
	s.IsEraser = b[20]&1 != 0
	count := int(binary.LittleEndian.Uint32(b[21:25]))
	b = b[25:]
	if len(b) < count*16 {
		return s, errors.New("slate: malformed stroke points")
	}
	s.Points = make([]Point, count)
	for i := 0; i < count; i++ {
		s.Points[i] = Point{X: readF64(b[i*16 : i*16+8]), Y: readF64(b[i*16+8 : i*16+16])}
	}
	return s, nil
}

func encodeItem(it Item) []byte {
	out := make([]byte, 0, 128+len(it.ImageData))
	out = appendString(out, it.ID)
	out = appendString(out, it.LayerID)
	out = append(out, byte(it.Type))
	out = appendF64(out, it.X)
	out = appendF64(out, it.Y)
	out = appendF64(out, it.W)
	out = appendF64(out, it.H)
	switch it.Type {
	case ItemNote:
		out = appendU32(out, it.Background)
		out = encodeNoteContent(out, it.Note)
	case ItemImage:
		out = appendString(out, it.ImageMIME)
		out = appendU32(out, uint32(len(it.ImageData)))
		out = append(out, it.ImageData...)
		if it.Border != nil {
			out = append(out, 1)
			out = appendF64(out, it.Border.Width)
			out = appendU32(out, it.Border.Color)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func decodeItem(b []byte) (Item, error) {
	var it Item
	var ok bool
	if it.ID, b, ok = readString(b); !ok {
		return it, errors.New("slate: malformed item id")
	}
	if it.LayerID, b, ok = readString(b); !ok {
		return it, errors.New("slate: malformed item layer")
	}
	if len(b) < 1+8*4 {
		return it, errors.New("slate: malformed item header")
	}
	it.Type = ItemType(b[0])
	it.X = readF64(b[1:9])
	it.Y = readF64(b[9:17])
	it.W = readF64(b[17:25])
	it.H = readF64(b[25:33])
	b = b[33:]
	switch it.Type {
	case ItemNote:
		if len(b) < 4 {
			return it, errors.New("slate: malformed note item")
		}
		it.Background = binary.LittleEndian.Uint32(b[:4])
		note, _, err := decodeNoteContent(b[4:])
		if err != nil {
			return it, err
		}
		it.Note = note
	case ItemImage:
		if it.ImageMIME, b, ok = readString(b); !ok {
			return it, errors.New("slate: malformed image mime")
		}
		if len(b) < 4 {
			return it, errors.New("slate: malformed image data length")
		}
		n := int(binary.LittleEndian.Uint32(b[:4]))
		b = b[4:]
		if len(b) < n+1 {
			return it, errors.New("slate: malformed image data")
		}
		it.ImageData = append([]byte(nil), b[:n]...)
		b = b[n:]
		if b[0]&1 != 0 {
			if len(b) < 1+8+4 {
				return it, errors.New("slate: malformed image border")
			}
			it.Border = &Border{Width: readF64(b[1:9]), Color: binary.LittleEndian.Uint32(b[9:13])}
		}
	default:
		return it, fmt.Errorf("slate: unknown item type %d", it.Type)
	}
	return it, nil
}

func encodeNoteContent(out []byte, n *NoteContent) []byte {
	if n == nil {
		return appendU32(out, 0)
	}
	out = appendU32(out, uint32(len(n.Blocks)))
	for _, blk := range n.Blocks {
		out = append(out, byte(blk.Kind))
		flags := byte(0)
		if blk.Checked {
			flags |= 1
		}
		out = append(out, flags)
		out = append(out, byte(blk.Align))
		out = appendU32(out, uint32(len(blk.Text)))
		out = append(out, blk.Text...)
		out = appendU32(out, uint32(len(blk.Runs)))
		for _, r := range blk.Runs {
			out = appendU32(out, r.Start)
			out = appendU32(out, r.End)
			out = append(out, packAttrFlags(r.Attr))
			out = appendU16(out, r.Attr.FontSizePt)
			out = appendU32(out, r.Attr.ColorRGBA)
		}
	}
	return out
}

func decodeNoteContent(b []byte) (*NoteContent, []byte, error) {
	if len(b) < 4 {
		return nil, nil, errors.New("slate: malformed note content")
	}
	count := int(binary.LittleEndian.Uint32(b[:4]))
	b = b[4:]
	// Each block takes at least a header, a text length, and a run
	// count; anything claiming more blocks than fit is malformed.
	const minBlockSize = 3 + 4 + 4
	if count > len(b)/minBlockSize {
		return nil, nil, errors.New("slate: malformed note content")
	}
	n := &NoteContent{Blocks: make([]NoteBlock, 0, count)}
	for i := 0; i < count; i++ {
		if len(b) < 3+4 {
			return nil, nil, errors.New("slate: malformed note block header")
		}
		blk := NoteBlock{Kind: BlockKind(b[0]), Checked: b[1]&1 != 0, Align: Alignment(b[2])}
		textLen := int(binary.LittleEndian.Uint32(b[3:7]))
		b = b[7:]
		if len(b) < textLen+4 {
			return nil, nil, errors.New("slate: malformed note block text")
		}
		blk.Text = append([]byte(nil), b[:textLen]...)
		b = b[textLen:]
		runCount := int(binary.LittleEndian.Uint32(b[:4]))
		b = b[4:]
		const runSize = 4 + 4 + 1 + 2 + 4
		if len(b) < runCount*runSize {
			return nil, nil, errors.New("slate: malformed note block runs")
		}
		blk.Runs = make([]StyleRun, 0, runCount)
		for j := 0; j < runCount; j++ {
			r := StyleRun{
				Start: binary.LittleEndian.Uint32(b[:4]),
				End:   binary.LittleEndian.Uint32(b[4:8]),
				Attr:  unpackAttr(b[8], binary.LittleEndian.Uint16(b[9:11]), binary.LittleEndian.Uint32(b[11:15])),
			}
			blk.Runs = append(blk.Runs, r)
			b = b[runSize:]
		}
		n.Blocks = append(n.Blocks, blk)
	}
	return n, b, nil
}

func packAttrFlags(a StyleAttr) byte {
	flags := byte(0)
	if a.Bold {
		flags |= 1
	}
	if a.Italic {
		flags |= 2
	}
	if a.Underline {
		flags |= 4
	}
	if a.Strike {
		flags |= 8
	}
	if a.Highlight {
		flags |= 16
	}
	return flags
}

func unpackAttr(flags byte, size uint16, rgba uint32) StyleAttr {
	return StyleAttr{
		Bold:       flags&1 != 0,
		Italic:     flags&2 != 0,
		Underline:  flags&4 != 0,
		Strike:     flags&8 != 0,
		Highlight:  flags&16 != 0,
		FontSizePt: size,
		ColorRGBA:  rgba,
	}
}

func isSecureEnvelope(b []byte) bool {
	return len(b) >= len(secureMagic) && string(b[:len(secureMagic)]) == secureMagic
}

func inspectEnvelopeBytes(b []byte) (EnvelopeInfo, error) {
	info := EnvelopeInfo{}
	if !isSecureEnvelope(b) {
		return info, nil
	}
	if len(b) < secureHeaderSize {
		return info, ErrInvalidSecureFile
	}
	version := binary.LittleEndian.Uint16(b[len(secureMagic) : len(secureMagic)+2])
	if version != secureVersionV1 {
		return info, fmt.Errorf("%w: secure envelope version %d", ErrUnsupportedVer, version)
	}
	flags := binary.LittleEndian.Uint16(b[len(secureMagic)+2 : len(secureMagic)+4])
	info.Wrapped = true
	info.Compressed = flags&secureFlagComp != 0
	info.Encrypted = flags&secureFlagEnc != 0
	info.EnvelopeVer = version
	return info, nil
}

func encodeSecureEnvelope(payload []byte, opts SaveOptions) ([]byte, error) {
	flags := uint16(0)
	if opts.Compression {
		flags |= secureFlagComp
	}
	if opts.Encryption.Enabled {
		flags |= secureFlagEnc
	}

	salt := make([]byte, secureSaltSize)
	nonce := make([]byte, secureNonceSize)
	if opts.Encryption.Enabled {
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return nil, err
		}
		key := pbkdf2.Key([]byte(opts.Encryption.Password), salt, kdfIterations, 32, sha256.New)
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		payload = gcm.Seal(nil, nonce, payload, nil)
	}

	out := make([]byte, secureHeaderSize)
	copy(out[:len(secureMagic)], secureMagic)
	binary.LittleEndian.PutUint16(out[len(secureMagic):len(secureMagic)+2], secureVersionV1)
	binary.LittleEndian.PutUint16(out[len(secureMagic)+2:len(secureMagic)+4], flags)
	copy(out[len(secureMagic)+4:len(secureMagic)+4+secureSaltSize], salt)
	copy(out[len(secureMagic)+4+secureSaltSize:len(secureMagic)+4+secureSaltSize+secureNonceSize], nonce)
	binary.LittleEndian.PutUint64(out[len(secureMagic)+4+secureSaltSize+secureNonceSize:], uint64(len(payload)))
	return append(out, payload...), nil
}

func decodeSecureEnvelope(b []byte, opts LoadOptions) ([]byte, error) {
	info, err := inspectEnvelopeBytes(b)
	if err != nil {
		return nil, err
	}
	if !info.Wrapped {
		return nil, ErrInvalidSecureFile
	}
	flags := binary.LittleEndian.Uint16(b[len(secureMagic)+2 : len(secureMagic)+4])
	salt := append([]byte(nil), b[len(secureMagic)+4:len(secureMagic)+4+secureSaltSize]...)
	nonce := append([]byte(nil), b[len(secureMagic)+4+secureSaltSize:len(secureMagic)+4+secureSaltSize+secureNonceSize]...)
	payloadLen := binary.LittleEndian.Uint64(b[len(secureMagic)+4+secureSaltSize+secureNonceSize:])
	if uint64(len(b)-secureHeaderSize) != payloadLen {
		return nil, ErrInvalidSecureFile
	}
	payload := append([]byte(nil), b[secureHeaderSize:]...)

	if flags&secureFlagEnc != 0 {
		if strings.TrimSpace(opts.Password) == "" {
			return nil, ErrPasswordRequired
		}
		key := pbkdf2.Key([]byte(opts.Password), salt, kdfIterations, 32, sha256.New)
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		payload, err = gcm.Open(nil, nonce, payload, nil)
		if err != nil {
			return nil, ErrInvalidPassword
		}
	}

	if flags&secureFlagComp != 0 {
		var err error
		payload, err = decompressBytes(payload)
		if err != nil {
			return nil, err
		}
	}
	return payload, nil
}

func compressBytes(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(in); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressBytes(in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func appendString(dst []byte, s string) []byte {
	dst = appendU32(dst, uint32(len(s)))
	return append(dst, s...)
}

func readString(src []byte) (string, []byte, bool) {
	if len(src) < 4 {
		return "", nil, false
	}
	ln := int(binary.LittleEndian.Uint32(src[:4]))
	src = src[4:]
	if len(src) < ln {
		return "", nil, false
	}
	return string(src[:ln]), src[ln:], true
}

func appendU16(dst []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

func appendU32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendU64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func appendF64(dst []byte, v float64) []byte {
	return appendU64(dst, math.Float64bits(v))
}

func readF64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:8]))
}
