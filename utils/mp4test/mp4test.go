// Package mp4test writes minimal ISO BMFF movies for tests. The files carry
// real box structure but no decodable media.
package mp4test

import (
	"os"

	"github.com/abema/go-mp4"
)

// Track describes one trak box. Codec is the sample entry type, e.g.
// "avc1", "mp4a" or "hev1".
type Track struct {
	Codec     string
	Width     uint16
	Height    uint16
	Timescale uint32
	Duration  uint32
}

// Movie describes a whole file. MdatFirst places the media data before the
// moov box, as a plain encoder without faststart would.
type Movie struct {
	Timescale uint32
	Duration  uint32
	Tracks    []Track
	MdatFirst bool
}

// Write creates path holding m.
func Write(path string, m Movie) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	b := &builder{w: mp4.NewWriter(f)}
	b.leaf(&mp4.Ftyp{
		MajorBrand:   [4]byte{'i', 's', 'o', 'm'},
		MinorVersion: 0x200,
		CompatibleBrands: []mp4.CompatibleBrandElem{
			{CompatibleBrand: [4]byte{'i', 's', 'o', 'm'}},
			{CompatibleBrand: [4]byte{'a', 'v', 'c', '1'}},
		},
	})
	if m.MdatFirst {
		b.mdat()
	}
	b.moov(m)
	if !m.MdatFirst {
		b.mdat()
	}

	if err := f.Close(); err != nil && b.err == nil {
		b.err = err
	}
	return b.err
}

type builder struct {
	w   *mp4.Writer
	err error
}

func (b *builder) start(t mp4.BoxType) {
	if b.err != nil {
		return
	}
	_, b.err = b.w.StartBox(&mp4.BoxInfo{Type: t})
}

func (b *builder) payload(box mp4.IImmutableBox) {
	if b.err != nil {
		return
	}
	_, b.err = mp4.Marshal(b.w, box, mp4.Context{})
}

func (b *builder) end() {
	if b.err != nil {
		return
	}
	_, b.err = b.w.EndBox()
}

func (b *builder) leaf(box mp4.IImmutableBox) {
	b.start(box.GetType())
	b.payload(box)
	b.end()
}

func (b *builder) mdat() {
	b.start(mp4.BoxTypeMdat())
	if b.err == nil {
		_, b.err = b.w.Write([]byte{0, 0, 0, 0})
	}
	b.end()
}

func (b *builder) moov(m Movie) {
	b.start(mp4.BoxTypeMoov())
	b.leaf(&mp4.Mvhd{
		Timescale:   m.Timescale,
		DurationV0:  m.Duration,
		Rate:        0x00010000,
		Volume:      0x0100,
		Matrix:      [9]int32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000},
		NextTrackID: uint32(len(m.Tracks) + 1),
	})
	for i, t := range m.Tracks {
		b.trak(uint32(i+1), t)
	}
	b.end()
}

func (b *builder) trak(id uint32, t Track) {
	b.start(mp4.BoxTypeTrak())
	b.leaf(&mp4.Tkhd{
		TrackID:    id,
		DurationV0: t.Duration,
		Matrix:     [9]int32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000},
		Width:      uint32(t.Width) << 16,
		Height:     uint32(t.Height) << 16,
	})

	b.start(mp4.BoxTypeMdia())
	b.leaf(&mp4.Mdhd{
		Timescale:  t.Timescale,
		DurationV0: t.Duration,
		Language:   [3]byte{'u' - 0x60, 'n' - 0x60, 'd' - 0x60},
	})
	b.start(mp4.BoxTypeMinf())
	b.start(mp4.BoxTypeStbl())

	b.start(mp4.BoxTypeStsd())
	b.payload(&mp4.Stsd{EntryCount: 1})
	b.sampleEntry(t)
	b.end()

	b.leaf(&mp4.Stts{EntryCount: 1, Entries: []mp4.SttsEntry{{SampleCount: 1, SampleDelta: t.Duration}}})
	b.leaf(&mp4.Stsc{EntryCount: 1, Entries: []mp4.StscEntry{{FirstChunk: 1, SamplesPerChunk: 1, SampleDescriptionIndex: 1}}})
	b.leaf(&mp4.Stsz{SampleCount: 1, EntrySize: []uint32{4}})
	b.leaf(&mp4.Stco{EntryCount: 1, ChunkOffset: []uint32{0}})

	b.end() // stbl
	b.end() // minf
	b.end() // mdia
	b.end() // trak
}

func (b *builder) sampleEntry(t Track) {
	boxType := mp4.StrToBoxType(t.Codec)
	entry := mp4.SampleEntry{AnyTypeBox: mp4.AnyTypeBox{Type: boxType}, DataReferenceIndex: 1}

	if boxType == mp4.BoxTypeMp4a() {
		b.leaf(&mp4.AudioSampleEntry{
			SampleEntry:  entry,
			ChannelCount: 2,
			SampleSize:   16,
			SampleRate:   44100 << 16,
		})
		return
	}

	b.start(boxType)
	b.payload(&mp4.VisualSampleEntry{
		SampleEntry:     entry,
		Width:           t.Width,
		Height:          t.Height,
		Horizresolution: 0x00480000,
		Vertresolution:  0x00480000,
		FrameCount:      1,
		Depth:           0x0018,
		PreDefined3:     -1,
	})
	if boxType == mp4.BoxTypeAvc1() {
		b.leaf(&mp4.AVCDecoderConfiguration{
			AnyTypeBox:           mp4.AnyTypeBox{Type: mp4.BoxTypeAvcC()},
			ConfigurationVersion: 1,
			Profile:              mp4.AVCMainProfile,
			Level:                0x1f,
			Reserved:             0x3f,
			LengthSizeMinusOne:   3,
			Reserved2:            0x7,
		})
	}
	b.end()
}
