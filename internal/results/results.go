// Package results implements the per-lookup Results API of spec.md §4.6:
// evaluating every relevant component graph for one IP address, then
// resolving, converting, and formatting the weighted values a caller's
// required properties carry.
package results

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/51Degrees/ip-intelligence-go/internal/dataset"
	"github.com/51Degrees/ip-intelligence-go/internal/graph"
	"github.com/51Degrees/ip-intelligence-go/internal/profile"
	strval "github.com/51Degrees/ip-intelligence-go/internal/strings"
	"github.com/51Degrees/ip-intelligence-go/internal/wire"
	"github.com/51Degrees/ip-intelligence-go/pkg/ipierr"
)

// ResultIpi is one component's evaluated graph result (spec.md §4.6: "an
// array of per-component ResultIpi{type, graphResult, targetIp}").
type ResultIpi struct {
	ComponentIndex int
	ComponentID    byte
	IPVersion      uint8
	TargetIP       []byte
	GraphResult    graph.Result
}

// ValueWeight pairs one converted property value with its group weighting
// (spec.md §4.6's ProfilePercentage{item, rawWeighting}, renamed to what it
// holds post-conversion rather than the pre-conversion profile-group term).
type ValueWeight struct {
	Text         string
	RawWeighting uint16
}

// NoValueReason classifies why get_values found nothing for a property
// (spec.md §4.6: "no_value_reason distinguishes InvalidProperty, NoResults,
// NullProfile, Unknown"). The zero value means "values are available".
type NoValueReason int

const (
	ReasonHasValues NoValueReason = iota
	ReasonInvalidProperty
	ReasonNoResults
	ReasonNullProfile
	ReasonUnknown
)

func (r NoValueReason) String() string {
	switch r {
	case ReasonHasValues:
		return "HasValues"
	case ReasonInvalidProperty:
		return "InvalidProperty"
	case ReasonNoResults:
		return "NoResults"
	case ReasonNullProfile:
		return "NullProfile"
	default:
		return "Unknown"
	}
}

// Results is the per-thread scratch object of spec.md §5's shared-resource
// policy: one per goroutine, reused across lookups via From*, never shared
// while in use.
type Results struct {
	ds    *dataset.Dataset
	items []ResultIpi

	networkIDCache [][]profile.WeightedProfile
}

// New creates a Results scratch object bound to ds. ds must outlive every
// call made through the returned *Results.
func New(ds *dataset.Dataset) *Results {
	return &Results{ds: ds}
}

// Items returns every per-component result produced by the most recent
// From* call, in the order spec.md §4.6 step 1 visits components.
func (r *Results) Items() []ResultIpi { return r.items }

// FromIP evaluates every component that owns at least one required
// property against raw (4 bytes for IPv4, 16 for IPv6), replacing any
// previous results (spec.md §4.6 step 1).
func (r *Results) FromIP(raw []byte) error {
	var ipVersion uint8
	switch len(raw) {
	case 4:
		ipVersion = 4
	case 16:
		ipVersion = 6
	default:
		return ipierr.New(ipierr.IncorrectIpAddressFormat, "ip address must be 4 or 16 bytes")
	}

	r.items = r.items[:0]
	r.networkIDCache = nil
	components := r.ds.Components()
	for _, compIdx := range componentsWithRequiredProperties(r.ds) {
		comp := components[compIdx]
		g, ok := r.ds.GraphFor(comp.ID, ipVersion)
		if !ok {
			continue
		}
		res, err := graph.Evaluate(g, raw)
		if err != nil {
			return err
		}
		r.items = append(r.items, ResultIpi{
			ComponentIndex: compIdx,
			ComponentID:    comp.ID,
			IPVersion:      ipVersion,
			TargetIP:       raw,
			GraphResult:    res,
		})
	}
	return nil
}

// FromIPString parses s (dotted-decimal IPv4 or colon-form IPv6, the text
// inverse of strval's decodeIP) and evaluates it as FromIP does.
func (r *Results) FromIPString(s string) error {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return ipierr.Wrap(ipierr.IncorrectIpAddressFormat, "parsing ip address", err)
	}
	if addr.Is4() {
		raw := addr.As4()
		return r.FromIP(raw[:])
	}
	raw := addr.As16()
	return r.FromIP(raw[:])
}

// componentsWithRequiredProperties returns the distinct Property.ComponentIndex
// values named by ds.Required, in ascending component order (spec.md §4.6
// step 1: "for every component with at least one required property").
func componentsWithRequiredProperties(ds *dataset.Dataset) []int {
	seen := make(map[uint32]bool)
	for _, req := range ds.Required {
		seen[req.Property.ComponentIndex] = true
	}
	out := make([]int, 0, len(seen))
	for i := range ds.Components() {
		if seen[uint32(i)] {
			out = append(out, i)
		}
	}
	return out
}

func (r *Results) itemForComponent(componentIndex uint32) (ResultIpi, bool) {
	for _, item := range r.items {
		if uint32(item.ComponentIndex) == componentIndex {
			return item, true
		}
	}
	return ResultIpi{}, false
}

// resolveValues implements the shared walk get_values/has_values/
// no_value_reason all drive (spec.md §4.6 steps 2 and 4).
func (r *Results) resolveValues(requiredPropertyIndex int) ([]ValueWeight, NoValueReason, error) {
	if requiredPropertyIndex < 0 || requiredPropertyIndex >= len(r.ds.Required) {
		return nil, ReasonInvalidProperty, nil
	}
	req := r.ds.Required[requiredPropertyIndex]

	item, ok := r.itemForComponent(req.Property.ComponentIndex)
	if !ok {
		return nil, ReasonNoResults, nil
	}

	weighted, err := r.ds.ResolveGraphResult(item.GraphResult)
	if err != nil {
		return nil, ReasonUnknown, err
	}
	if len(weighted) == 0 {
		return nil, ReasonNullProfile, nil
	}

	storedType := strval.StoredType(req.Type.StoredValueType)
	var out []ValueWeight
	for _, wp := range weighted {
		indexes := profile.ValueIndexesForProperty(wp.Profile, req.Property.FirstValueIndex, req.Property.LastValueIndex)
		for _, vi := range indexes {
			text, terr := r.ds.ValueText(vi, storedType, nil)
			if terr != nil {
				return nil, ReasonUnknown, terr
			}
			out = append(out, ValueWeight{Text: text, RawWeighting: wp.RawWeighting})
		}
	}
	if len(out) == 0 {
		return nil, ReasonNullProfile, nil
	}
	return out, ReasonHasValues, nil
}

// GetValues resolves requiredPropertyIndex's weighted values for the most
// recent From* call (spec.md §4.6 step 2).
func (r *Results) GetValues(requiredPropertyIndex int) ([]ValueWeight, error) {
	values, reason, err := r.resolveValues(requiredPropertyIndex)
	if err != nil {
		return nil, err
	}
	if reason != ReasonHasValues {
		return nil, ipierr.New(ipierr.InvalidInput, "no values available: "+reason.String())
	}
	return values, nil
}

// HasValues reports whether requiredPropertyIndex has at least one value.
// It runs the same resolution as GetValues and discards the resulting list
// (spec.md §4.6 step 4).
func (r *Results) HasValues(requiredPropertyIndex int) bool {
	_, reason, _ := r.resolveValues(requiredPropertyIndex)
	return reason == ReasonHasValues
}

// NoValueReason reports why requiredPropertyIndex has no values, or
// ReasonHasValues if it does (spec.md §4.6 step 4).
func (r *Results) NoValueReason(requiredPropertyIndex int) NoValueReason {
	_, reason, _ := r.resolveValues(requiredPropertyIndex)
	return reason
}

// GetValuesString renders requiredPropertyIndex's values as
// `"<value>":<weight>` entries joined by sep, each weight the profile's
// raw weighting divided by wire.FullWeight (spec.md §4.6 step 3). limit <=
// 0 means unbounded; a positive limit truncates rather than growing past
// it, matching strval.ValueBuilder's bounded-write contract.
func (r *Results) GetValuesString(requiredPropertyIndex int, sep string, limit int) (string, error) {
	values, err := r.GetValues(requiredPropertyIndex)
	if err != nil {
		return "", err
	}
	b := strval.NewValueBuilder(sep, limit)
	for _, v := range values {
		weight := float64(v.RawWeighting) / float64(wire.FullWeight)
		entry := strconv.Quote(v.Text) + ":" + strconv.FormatFloat(weight, 'g', -1, 64)
		if !b.Add(entry) {
			break
		}
	}
	return b.String(), nil
}

// NetworkIDCursor marks where an incremental WriteNetworkID call left off:
// which component result and which of its weighted profiles comes next.
// The zero value starts from the beginning.
type NetworkIDCursor struct {
	ResultIndex           int
	ComponentProfileIndex int
}

// weightedForResult resolves and caches the weighted profile list for the
// idx-th item, so repeated WriteNetworkID calls across a chunked buffer
// don't re-walk the same profile group.
func (r *Results) weightedForResult(idx int) ([]profile.WeightedProfile, error) {
	if r.networkIDCache == nil {
		r.networkIDCache = make([][]profile.WeightedProfile, len(r.items))
	}
	if r.networkIDCache[idx] == nil {
		weighted, err := r.ds.ResolveGraphResult(r.items[idx].GraphResult)
		if err != nil {
			return nil, err
		}
		if weighted == nil {
			weighted = []profile.WeightedProfile{}
		}
		r.networkIDCache[idx] = weighted
	}
	return r.networkIDCache[idx], nil
}

// WriteNetworkID renders the network id as `profileId:weight` pairs per
// component joined by ":", components joined by "|" (spec.md §4.6's network
// id emission), writing as many whole pairs as fit in buf and leaving
// cursor positioned to resume on the next call. It returns the number of
// bytes written and whether every component has now been emitted.
func (r *Results) WriteNetworkID(cursor *NetworkIDCursor, buf []byte) (n int, done bool, err error) {
	for cursor.ResultIndex < len(r.items) {
		weighted, werr := r.weightedForResult(cursor.ResultIndex)
		if werr != nil {
			return n, false, werr
		}
		for cursor.ComponentProfileIndex < len(weighted) {
			wp := weighted[cursor.ComponentProfileIndex]
			token := strconv.FormatUint(uint64(wp.Profile.ProfileID), 10) + ":" + strconv.FormatUint(uint64(wp.RawWeighting), 10)

			sep := ""
			switch {
			case cursor.ComponentProfileIndex > 0:
				sep = ":"
			case cursor.ResultIndex > 0:
				sep = "|"
			}
			piece := sep + token

			if n+len(piece) > len(buf) {
				return n, false, nil
			}
			n += copy(buf[n:], piece)
			cursor.ComponentProfileIndex++
		}
		cursor.ComponentProfileIndex = 0
		cursor.ResultIndex++
	}
	return n, true, nil
}

// NetworkID renders the full network id in one call, growing its own
// buffer rather than bounding the write (the non-incremental counterpart
// to WriteNetworkID).
func (r *Results) NetworkID() (string, error) {
	var sb strings.Builder
	cursor := NetworkIDCursor{}
	buf := make([]byte, 256)
	for {
		n, done, err := r.WriteNetworkID(&cursor, buf)
		if err != nil {
			return "", err
		}
		sb.Write(buf[:n])
		if done {
			return sb.String(), nil
		}
		if n == 0 {
			buf = make([]byte, len(buf)*2)
		}
	}
}
