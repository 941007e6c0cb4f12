package results

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/51Degrees/ip-intelligence-go/internal/dataset"
)

// --- synthetic data-file builder -------------------------------------------
//
// Mirrors internal/dataset's own synthetic-file builder (one component, one
// required property backed by one value, a bare ProfileOffsets entry
// pointing at a direct profile, and the single-leaf trie
// internal/graph/evaluate_test.go validates) so this package can exercise
// the Results API without depending on internal/dataset's unexported test
// helpers.

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func stringsEntry(s string) []byte {
	payload := append([]byte(s), 0)
	out := make([]byte, 0, 2+len(payload))
	out = append(out, u16(uint16(len(payload)))...)
	out = append(out, payload...)
	return out
}

func buildProfile(componentIndex, profileID uint32, values []uint32) []byte {
	out := append([]byte{}, u32(componentIndex)...)
	out = append(out, u32(profileID)...)
	out = append(out, u32(uint32(len(values)))...)
	for _, v := range values {
		out = append(out, u32(v)...)
	}
	return out
}

const graphInfoFixedSize = 1 + 4*6 + 12*4 + (1 + (8+1)*3)

type builtFile struct {
	bytes            []byte
	componentID      byte
	requiredProperty string
	expectedValue    string
}

func buildSyntheticDataset() builtFile {
	const headerFixed = 4 + 8 + 16 + 16 + 8 + 8 + 4 + 4 + 4
	const collHdrSize = 12
	const collCount = 11
	const H = headerFixed + collHdrSize*collCount

	componentNameOff := 0
	compNameEntry := stringsEntry("ipcomp")
	headerNameOff := len(compNameEntry)
	headerNameEntry := stringsEntry("X-Forwarded-For")
	propNameOff := headerNameOff + len(headerNameEntry)
	propNameEntry := stringsEntry("country")
	valueTextOff := propNameOff + len(propNameEntry)
	valueTextEntry := stringsEntry("USA")

	stringsBuf := append([]byte{}, compNameEntry...)
	stringsBuf = append(stringsBuf, headerNameEntry...)
	stringsBuf = append(stringsBuf, propNameEntry...)
	stringsBuf = append(stringsBuf, valueTextEntry...)
	if len(stringsBuf)%4 == 0 {
		panic("synthetic strings region would be misclassified as fixed-width")
	}

	componentsBuf := []byte{1}
	componentsBuf = append(componentsBuf, u32(uint32(componentNameOff))...)
	componentsBuf = append(componentsBuf, u32(0)...)
	componentsBuf = append(componentsBuf, u32(1)...)
	componentsBuf = append(componentsBuf, u32(uint32(headerNameOff))...)
	componentsBuf = append(componentsBuf, u32(0)...)

	var mapsBuf []byte

	propertiesBuf := append([]byte{}, u32(0)...)
	propertiesBuf = append(propertiesBuf, u32(0)...)
	propertiesBuf = append(propertiesBuf, 0, 0)
	propertiesBuf = append(propertiesBuf, u32(0)...)
	propertiesBuf = append(propertiesBuf, u32(uint32(propNameOff))...)
	propertiesBuf = append(propertiesBuf, u32(0)...)
	propertiesBuf = append(propertiesBuf, u32(0)...)
	propertiesBuf = append(propertiesBuf, u32(0)...)
	propertiesBuf = append(propertiesBuf, u32(0)...)
	propertiesBuf = append(propertiesBuf, u32(0)...)
	propertiesBuf = append(propertiesBuf, u32(0)...)
	propertiesBuf = append(propertiesBuf, u32(0)...)

	valuesBuf := append([]byte{}, u32(0)...)
	valuesBuf = append(valuesBuf, u32(uint32(valueTextOff))...)
	valuesBuf = append(valuesBuf, u32(0)...)
	valuesBuf = append(valuesBuf, u16(0)...)

	profile0 := buildProfile(0, 777, []uint32{0})
	profile1 := buildProfile(0, 778, []uint32{0, 1})
	profile2 := buildProfile(0, 779, []uint32{0})
	profilesBuf := append([]byte{}, profile0...)
	profilesBuf = append(profilesBuf, profile1...)
	profilesBuf = append(profilesBuf, profile2...)
	if len(profilesBuf)%3 == 0 {
		panic("synthetic profiles region would be misclassified as fixed-width")
	}

	var profileGroupsBuf []byte

	propertyTypesBuf := append([]byte{}, u32(uint32(propNameOff))...)
	propertyTypesBuf = append(propertyTypesBuf, 0)

	profileOffsetsBuf := u32(0)

	regionLens := []int{
		len(stringsBuf), len(componentsBuf), len(mapsBuf), len(propertiesBuf),
		len(valuesBuf), len(profilesBuf), graphInfoFixedSize, len(profileGroupsBuf),
		len(propertyTypesBuf), len(profileOffsetsBuf),
	}
	pos := make([]int, len(regionLens))
	cursor := H
	for i, l := range regionLens {
		pos[i] = cursor
		cursor += l
	}
	spanBytesPos := cursor
	spansPos := spanBytesPos
	spansLen := 6
	clustersPos := spansPos + spansLen
	clustersLen := 4 + 4 + 256*4
	nodesPos := clustersPos + clustersLen
	nodesLen := 1

	graphBuf := make([]byte, 0, graphInfoFixedSize)
	graphBuf = append(graphBuf, 4)
	graphBuf = append(graphBuf, u32(1)...)
	graphBuf = append(graphBuf, u32(0)...)
	graphBuf = append(graphBuf, u32(0)...)
	graphBuf = append(graphBuf, u32(1)...)
	graphBuf = append(graphBuf, u32(0)...)
	graphBuf = append(graphBuf, u32(0)...)
	appendCollHeader := func(buf []byte, start, length, count int) []byte {
		buf = append(buf, u32(uint32(start))...)
		buf = append(buf, u32(uint32(length))...)
		buf = append(buf, u32(uint32(count))...)
		return buf
	}
	graphBuf = appendCollHeader(graphBuf, spanBytesPos, 0, 0)
	graphBuf = appendCollHeader(graphBuf, spansPos, spansLen, 1)
	graphBuf = appendCollHeader(graphBuf, clustersPos, clustersLen, 1)
	graphBuf = appendCollHeader(graphBuf, nodesPos, nodesLen, 1)
	graphBuf = append(graphBuf, 8)
	graphBuf = append(graphBuf, u64(0xE0)...)
	graphBuf = append(graphBuf, 5)
	graphBuf = append(graphBuf, u64(0x10)...)
	graphBuf = append(graphBuf, 4)
	graphBuf = append(graphBuf, u64(0x0F)...)
	graphBuf = append(graphBuf, 0)
	if len(graphBuf) != graphInfoFixedSize {
		panic("synthetic ComponentGraphInfo size mismatch")
	}

	spansBuf := []byte{1, 2, 0x60, 0, 0, 0}
	clustersBuf := make([]byte, clustersLen)
	nodesBuf := []byte{0x11}

	var file []byte
	writeCollHeader := func(start, length, count int) {
		file = append(file, u32(uint32(start))...)
		file = append(file, u32(uint32(length))...)
		file = append(file, u32(uint32(count))...)
	}

	file = append(file, []byte("IPI\x00")...)
	file = append(file, u16(4)...)
	file = append(file, u16(4)...)
	file = append(file, u16(0)...)
	file = append(file, u16(0)...)
	file = append(file, make([]byte, 16)...)
	file = append(file, make([]byte, 16)...)
	file = append(file, u64(0)...)
	file = append(file, u64(0)...)
	file = append(file, u32(0)...)
	file = append(file, u32(0)...)
	file = append(file, u32(0)...)

	writeCollHeader(pos[0], len(stringsBuf), 4)
	writeCollHeader(pos[1], len(componentsBuf), 1)
	writeCollHeader(pos[2], len(mapsBuf), 0)
	writeCollHeader(pos[3], len(propertiesBuf), 1)
	writeCollHeader(pos[4], len(valuesBuf), 1)
	writeCollHeader(pos[5], len(profilesBuf), 3)
	writeCollHeader(pos[6], len(graphBuf), 1)
	writeCollHeader(pos[7], len(profileGroupsBuf), 0)
	writeCollHeader(pos[8], len(propertyTypesBuf), 1)
	writeCollHeader(pos[9], len(profileOffsetsBuf), 1)
	writeCollHeader(nodesPos+nodesLen, 0, 0)

	if len(file) != H {
		panic("header size mismatch")
	}

	file = append(file, stringsBuf...)
	file = append(file, componentsBuf...)
	file = append(file, mapsBuf...)
	file = append(file, propertiesBuf...)
	file = append(file, valuesBuf...)
	file = append(file, profilesBuf...)
	file = append(file, graphBuf...)
	file = append(file, profileGroupsBuf...)
	file = append(file, propertyTypesBuf...)
	file = append(file, profileOffsetsBuf...)
	file = append(file, spansBuf...)
	file = append(file, clustersBuf...)
	file = append(file, nodesBuf...)

	return builtFile{
		bytes:            file,
		componentID:      1,
		requiredProperty: "country",
		expectedValue:    "USA",
	}
}

func openSyntheticDataset(t *testing.T) (*dataset.Dataset, builtFile) {
	t.Helper()
	bf := buildSyntheticDataset()
	ds, err := dataset.OpenMemory(bf.bytes, dataset.Config{}, []string{bf.requiredProperty})
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return ds, bf
}

func TestResults_FromIP_ResolvesRequiredProperty(t *testing.T) {
	ds, bf := openSyntheticDataset(t)
	r := New(ds)

	require.NoError(t, r.FromIP([]byte{0, 0, 0, 0}))
	require.Len(t, r.Items(), 1)
	item := r.Items()[0]
	require.Equal(t, bf.componentID, item.ComponentID)
	require.EqualValues(t, 4, item.IPVersion)

	require.True(t, r.HasValues(0))
	require.Equal(t, ReasonHasValues, r.NoValueReason(0))

	values, err := r.GetValues(0)
	require.NoError(t, err)
	require.Len(t, values, 1)
	require.Equal(t, bf.expectedValue, values[0].Text)
	require.EqualValues(t, 0xFFFF, values[0].RawWeighting)
}

func TestResults_FromIPString_MatchesFromIP(t *testing.T) {
	ds, _ := openSyntheticDataset(t)
	r := New(ds)

	require.NoError(t, r.FromIPString("0.0.0.0"))
	require.Len(t, r.Items(), 1)
	require.True(t, r.HasValues(0))
}

func TestResults_FromIPString_RejectsGarbage(t *testing.T) {
	ds, _ := openSyntheticDataset(t)
	r := New(ds)

	require.Error(t, r.FromIPString("not-an-ip"))
}

func TestResults_GetValues_InvalidIndex(t *testing.T) {
	ds, _ := openSyntheticDataset(t)
	r := New(ds)
	require.NoError(t, r.FromIP([]byte{0, 0, 0, 0}))

	_, err := r.GetValues(5)
	require.Error(t, err)
	require.Equal(t, ReasonInvalidProperty, r.NoValueReason(5))
}

func TestResults_GetValuesString_Format(t *testing.T) {
	ds, bf := openSyntheticDataset(t)
	r := New(ds)
	require.NoError(t, r.FromIP([]byte{0, 0, 0, 0}))

	s, err := r.GetValuesString(0, ",", 0)
	require.NoError(t, err)
	require.Equal(t, `"`+bf.expectedValue+`":1`, s)
}

func TestResults_NetworkID_SingleComponent(t *testing.T) {
	ds, _ := openSyntheticDataset(t)
	r := New(ds)
	require.NoError(t, r.FromIP([]byte{0, 0, 0, 0}))

	id, err := r.NetworkID()
	require.NoError(t, err)
	require.Equal(t, "777:65535", id)
}

func TestResults_WriteNetworkID_ChunkedAcrossSmallBuffers(t *testing.T) {
	ds, _ := openSyntheticDataset(t)
	r := New(ds)
	require.NoError(t, r.FromIP([]byte{0, 0, 0, 0}))

	var sb strings.Builder
	cursor := NetworkIDCursor{}
	buf := make([]byte, 3)
	for {
		n, done, err := r.WriteNetworkID(&cursor, buf)
		require.NoError(t, err)
		sb.Write(buf[:n])
		if done {
			break
		}
		if n == 0 {
			buf = make([]byte, len(buf)*2)
		}
	}
	require.Equal(t, "777:65535", sb.String())
}
