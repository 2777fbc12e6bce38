package recording

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/OpenPSG/edf"

	"github.com/cwbudde/algo-eeg/eeg"
)

// Format identifies the on-disk sample encoding.
type Format int

const (
	// FormatEDF stores 16-bit little-endian samples.
	FormatEDF Format = iota
	// FormatBDF stores 24-bit little-endian samples (BioSemi).
	FormatBDF
)

// String returns "EDF" or "BDF".
func (f Format) String() string {
	if f == FormatBDF {
		return "BDF"
	}
	return "EDF"
}

const (
	fixedHeaderBytes  = 256
	signalHeaderBytes = 256
	bdfVersionTag     = "BIOSEMI"

	// maxRecordBytes bounds one data record. At 24 bits this is 256
	// signals of 16 kHz in one-second records, with room to spare.
	maxRecordBytes = 64 << 20
)

// header is a parsed EDF/BDF header. The embedded edf.Header carries the
// standard fields; the rest is derived from them.
type header struct {
	edf.Header
	format      Format
	recordSec   float64
	sampleWidth int
}

func (h *header) recordBytes() int {
	n := 0
	for _, s := range h.Signals {
		n += s.SamplesPerRecord * h.sampleWidth
	}
	return n
}

func (h *header) rate(i int) float64 {
	return float64(h.Signals[i].SamplesPerRecord) / h.recordSec
}

// signal field widths in header order.
var signalFieldWidths = [...]int{16, 80, 8, 8, 8, 8, 8, 80, 8, 32}

func decodeErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{eeg.ErrDecode}, args...)...)
}

func readHeader(r io.Reader) (*header, error) {
	b := make([]byte, fixedHeaderBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, decodeErr("reading header: %v", err)
	}

	h := &header{}
	switch {
	case b[0] == 0xFF && string(b[1:8]) == bdfVersionTag:
		h.format = FormatBDF
		h.sampleWidth = 3
		h.Version = edf.Version(b[1:8])
	case strings.TrimSpace(string(b[0:8])) == string(edf.Version0):
		h.format = FormatEDF
		h.sampleWidth = 2
		h.Version = edf.Version0
	default:
		return nil, decodeErr("unknown version field %q", b[0:8])
	}

	h.PatientID = strings.TrimSpace(string(b[8:88]))
	h.RecordingID = strings.TrimSpace(string(b[88:168]))
	h.StartTime = parseStart(string(b[168:176]), string(b[176:184]))

	var err error
	if h.HeaderBytes, err = atoiField(b[184:192], "header bytes"); err != nil {
		return nil, err
	}
	if h.DataRecords, err = atoiField(b[236:244], "data records"); err != nil {
		return nil, err
	}
	if h.DataRecords < -1 {
		return nil, decodeErr("data records must be >= -1: %d", h.DataRecords)
	}

	h.recordSec, err = strconv.ParseFloat(strings.TrimSpace(string(b[244:252])), 64)
	if err != nil || !(h.recordSec > 0) {
		return nil, decodeErr("record duration must be > 0: %q", strings.TrimSpace(string(b[244:252])))
	}
	h.DataRecordDuration = time.Duration(h.recordSec * float64(time.Second))

	if h.SignalCount, err = atoiField(b[252:256], "signal count"); err != nil {
		return nil, err
	}
	if h.SignalCount <= 0 {
		return nil, decodeErr("signal count must be > 0: %d", h.SignalCount)
	}

	want := fixedHeaderBytes + signalHeaderBytes*h.SignalCount
	if h.HeaderBytes < want {
		return nil, decodeErr("header bytes %d too small for %d signals", h.HeaderBytes, h.SignalCount)
	}

	sb := make([]byte, signalHeaderBytes*h.SignalCount)
	if _, err := io.ReadFull(r, sb); err != nil {
		return nil, decodeErr("reading signal headers: %v", err)
	}

	h.Signals = make([]edf.Signal, h.SignalCount)
	off := 0
	field := func(width int) []string {
		out := make([]string, h.SignalCount)
		for i := range out {
			out[i] = strings.TrimSpace(string(sb[off : off+width]))
			off += width
		}
		return out
	}

	labels := field(signalFieldWidths[0])
	transducers := field(signalFieldWidths[1])
	dims := field(signalFieldWidths[2])
	pmins := field(signalFieldWidths[3])
	pmaxs := field(signalFieldWidths[4])
	dmins := field(signalFieldWidths[5])
	dmaxs := field(signalFieldWidths[6])
	prefilters := field(signalFieldWidths[7])
	sprs := field(signalFieldWidths[8])
	reserved := field(signalFieldWidths[9])

	for i := range h.Signals {
		s := &h.Signals[i]
		s.Label = labels[i]
		s.TransducerType = transducers[i]
		s.PhysicalDimension = dims[i]
		s.Prefiltering = prefilters[i]
		s.Reserved = reserved[i]

		if s.PhysicalMin, err = strconv.ParseFloat(pmins[i], 64); err != nil {
			return nil, decodeErr("signal %q physical min %q", s.Label, pmins[i])
		}
		if s.PhysicalMax, err = strconv.ParseFloat(pmaxs[i], 64); err != nil {
			return nil, decodeErr("signal %q physical max %q", s.Label, pmaxs[i])
		}
		if s.DigitalMin, err = strconv.Atoi(dmins[i]); err != nil {
			return nil, decodeErr("signal %q digital min %q", s.Label, dmins[i])
		}
		if s.DigitalMax, err = strconv.Atoi(dmaxs[i]); err != nil {
			return nil, decodeErr("signal %q digital max %q", s.Label, dmaxs[i])
		}
		if s.DigitalMax == s.DigitalMin {
			return nil, decodeErr("signal %q has an empty digital range", s.Label)
		}
		if s.SamplesPerRecord, err = strconv.Atoi(sprs[i]); err != nil || s.SamplesPerRecord <= 0 {
			return nil, decodeErr("signal %q samples per record %q", s.Label, sprs[i])
		}
		if s.SamplesPerRecord > maxRecordBytes/h.sampleWidth {
			return nil, decodeErr("signal %q samples per record %d exceeds the record limit", s.Label, s.SamplesPerRecord)
		}
	}
	if rb := h.recordBytes(); rb > maxRecordBytes {
		return nil, decodeErr("data record of %d bytes exceeds %d", rb, maxRecordBytes)
	}

	if extra := h.HeaderBytes - want; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return nil, decodeErr("skipping header padding: %v", err)
		}
	}

	return h, nil
}

func atoiField(b []byte, name string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, decodeErr("%s %q", name, strings.TrimSpace(string(b)))
	}
	return v, nil
}

// parseStart returns the zero time when the date or time fields are malformed.
func parseStart(date, clock string) time.Time {
	d, err := time.Parse("02.01.06", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}
	}
	c, err := time.Parse("15.04.05", strings.TrimSpace(clock))
	if err != nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, time.UTC)
}

func isAnnotation(label string) bool {
	return label == "EDF Annotations" || label == "BDF Annotations"
}

// classify infers the channel kind from its label, then its transducer.
func classify(label, transducer string) Kind {
	for _, s := range []string{label, transducer} {
		u := strings.ToUpper(strings.TrimSpace(s))
		switch {
		case strings.HasPrefix(u, "EOG"):
			return KindEOG
		case strings.HasPrefix(u, "ECG"), strings.HasPrefix(u, "EKG"):
			return KindECG
		case strings.HasPrefix(u, "EMG"):
			return KindEMG
		case u == "STATUS", strings.HasPrefix(u, "TRIGGER"):
			return KindStim
		case strings.HasPrefix(u, "MISC"):
			return KindMisc
		case strings.HasPrefix(u, "EEG"):
			return KindEEG
		}
	}
	return KindEEG
}

// selectSignals returns the indices of data signals at the most common
// sample rate, and the labels of the others. Ties go to the rate seen first.
func selectSignals(h *header) (keep []int, skipped []string, rate float64) {
	counts := map[float64]int{}
	var order []float64
	for i, s := range h.Signals {
		if isAnnotation(s.Label) {
			continue
		}
		r := h.rate(i)
		if counts[r] == 0 {
			order = append(order, r)
		}
		counts[r]++
	}

	for _, r := range order {
		if counts[r] > counts[rate] {
			rate = r
		}
	}

	for i, s := range h.Signals {
		if isAnnotation(s.Label) {
			continue
		}
		if h.rate(i) == rate {
			keep = append(keep, i)
		} else {
			skipped = append(skipped, s.Label)
		}
	}
	return keep, skipped, rate
}

// uniqueNames suffixes repeated labels with -2, -3, ... skipping any
// suffix that is itself taken by another label.
func uniqueNames(labels []string) []string {
	base := make([]string, len(labels))
	taken := make(map[string]bool, len(labels))
	for i, l := range labels {
		if l == "" {
			l = fmt.Sprintf("ch%d", i+1)
		}
		base[i] = l
		taken[l] = true
	}

	out := make([]string, len(labels))
	used := make(map[string]bool, len(labels))
	next := make(map[string]int, len(labels))
	for i, l := range base {
		name := l
		if used[name] {
			n := max(next[l], 2)
			for {
				name = fmt.Sprintf("%s-%d", l, n)
				n++
				if !used[name] && !taken[name] {
					break
				}
			}
			next[l] = n
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func sampleAt(b []byte, width int) int32 {
	if width == 3 {
		return int32(b[0]) | int32(b[1])<<8 | int32(int8(b[2]))<<16
	}
	return int32(int16(uint16(b[0]) | uint16(b[1])<<8))
}

// Decode parses an EDF or BDF stream. name is used in error messages and
// as the recording source. Sample storage grows as records arrive, so a
// header that overstates the record count cannot force a large allocation.
func Decode(r io.Reader, name string) (*Recording, error) {
	return decode(r, name, -1)
}

// decode parses a stream of size bytes, or of unknown size when size < 0.
// A known size lets the declared record count be checked and preallocated.
func decode(r io.Reader, name string, size int64) (*Recording, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if size >= 0 && h.DataRecords > 0 {
		need := int64(h.HeaderBytes) + int64(h.DataRecords)*int64(h.recordBytes())
		if need > size {
			return nil, fmt.Errorf("%s: %w", name, decodeErr("%d data records need %d bytes, file has %d", h.DataRecords, need, size))
		}
	}

	keep, skipped, rate := selectSignals(h)
	if len(keep) == 0 {
		return nil, fmt.Errorf("%s: %w", name, decodeErr("no data signals"))
	}

	// byte offset of each signal inside a record
	offsets := make([]int, len(h.Signals))
	pos := 0
	for i, s := range h.Signals {
		offsets[i] = pos
		pos += s.SamplesPerRecord * h.sampleWidth
	}
	record := make([]byte, h.recordBytes())

	data := make([][]float64, len(keep))
	if size >= 0 && h.DataRecords > 0 {
		for k, i := range keep {
			data[k] = make([]float64, 0, h.DataRecords*h.Signals[i].SamplesPerRecord)
		}
	}

	records := 0
	for h.DataRecords < 0 || records < h.DataRecords {
		if _, err := io.ReadFull(r, record); err != nil {
			if errors.Is(err, io.EOF) && h.DataRecords < 0 {
				break
			}
			return nil, fmt.Errorf("%s: %w", name, decodeErr("data record %d truncated: %v", records, err))
		}

		for k, i := range keep {
			s := h.Signals[i]
			gain := (s.PhysicalMax - s.PhysicalMin) / float64(s.DigitalMax-s.DigitalMin)
			b := record[offsets[i]:]
			for j := 0; j < s.SamplesPerRecord; j++ {
				d := sampleAt(b[j*h.sampleWidth:], h.sampleWidth)
				data[k] = append(data[k], s.PhysicalMin+(float64(d)-float64(s.DigitalMin))*gain)
			}
		}
		records++
	}
	if records == 0 {
		return nil, fmt.Errorf("%s: %w", name, decodeErr("no data records"))
	}

	labels := make([]string, len(keep))
	for k, i := range keep {
		labels[k] = h.Signals[i].Label
	}
	names := uniqueNames(labels)

	channels := make([]Channel, len(keep))
	for k, i := range keep {
		s := h.Signals[i]
		channels[k] = Channel{
			Name: names[k],
			Kind: classify(s.Label, s.TransducerType),
			Unit: s.PhysicalDimension,
		}
	}

	rec, err := New(channels, rate, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	rec.StartTime = h.StartTime
	rec.Source = name
	rec.Skipped = skipped
	return rec, nil
}

// Open reads and decodes the recording at path.
func Open(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", eeg.ErrDecode, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", eeg.ErrDecode, err)
	}
	return decode(bufio.NewReaderSize(f, 1<<16), path, st.Size())
}

// Info is header-level information about a recording file.
type Info struct {
	Path         string    `json:"path"`
	Format       string    `json:"format"`
	Channels     int       `json:"channels"`
	ChannelNames []string  `json:"channel_names"`
	SampleRate   float64   `json:"sampling_rate"`
	DataRecords  int       `json:"data_records"`
	Duration     float64   `json:"duration_seconds"`
	StartTime    time.Time `json:"start_time"`
	FileSize     int64     `json:"file_size"`
}

// ReadInfo reads only the header of the file at path. An unknown record
// count is derived from the file size.
func ReadInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", eeg.ErrDecode, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", eeg.ErrDecode, err)
	}

	h, err := readHeader(bufio.NewReader(f))
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}

	records := h.DataRecords
	if records < 0 {
		if rb := h.recordBytes(); rb > 0 {
			records = int((st.Size() - int64(h.HeaderBytes)) / int64(rb))
		}
	}

	keep, _, rate := selectSignals(h)
	labels := make([]string, len(keep))
	for k, i := range keep {
		labels[k] = h.Signals[i].Label
	}

	return Info{
		Path:         path,
		Format:       h.format.String(),
		Channels:     len(keep),
		ChannelNames: uniqueNames(labels),
		SampleRate:   rate,
		DataRecords:  records,
		Duration:     float64(records) * h.recordSec,
		StartTime:    h.StartTime,
		FileSize:     st.Size(),
	}, nil
}

// Verify reports whether the file at path has a readable header and a data
// section large enough for the records it declares.
func Verify(path string) error {
	info, err := ReadInfo(path)
	if err != nil {
		return err
	}
	if info.Channels == 0 {
		return fmt.Errorf("%s: %w", path, decodeErr("no data signals"))
	}
	if info.DataRecords <= 0 {
		return fmt.Errorf("%s: %w", path, decodeErr("no data records"))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", eeg.ErrDecode, err)
	}
	defer f.Close()

	h, err := readHeader(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	need := int64(h.HeaderBytes) + int64(info.DataRecords)*int64(h.recordBytes())
	if info.FileSize < need {
		return fmt.Errorf("%s: %w", path, decodeErr("file has %d bytes, header declares %d", info.FileSize, need))
	}
	return nil
}
