package preprocessing

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/hopus-ml/hopus/frame"
	"github.com/hopus-ml/hopus/pkg/errors"
)

// Column groups.
const (
	Identification              = "identification"
	KeyPredictionFeatures       = "keyPredictionFeatures"
	AuxiliaryPredictionFeatures = "auxiliaryPredictionFeatures"
	Target                      = "target"
	Unused                      = "unused"
)

// GroupNames lists the groups in presentation order.
var GroupNames = []string{
	Identification,
	KeyPredictionFeatures,
	AuxiliaryPredictionFeatures,
	Target,
	Unused,
}

//go:embed column_to_group_map.csv
var defaultColumnGroups []byte

// ColumnGroups maps a processed column name to its group.
//
// Columns starting with features_ that are not listed explicitly belong to
// auxiliaryPredictionFeatures.
type ColumnGroups struct {
	groups map[string]string
}

// DefaultColumnGroups returns the map shipped with the module.
func DefaultColumnGroups() *ColumnGroups {
	g, err := ReadColumnGroups(bytes.NewReader(defaultColumnGroups))
	if err != nil {
		panic(err)
	}
	return g
}

// LoadColumnGroups reads a Key,Value CSV from path. An empty path returns
// the default map.
func LoadColumnGroups(path string) (*ColumnGroups, error) {
	if path == "" {
		return DefaultColumnGroups(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open column group map %s", path)
	}
	defer file.Close()
	return ReadColumnGroups(file)
}

// ReadColumnGroups parses a CSV with a Key,Value header.
func ReadColumnGroups(r io.Reader) (*ColumnGroups, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read column group map")
	}
	if len(records) == 0 || len(records[0]) < 2 ||
		strings.TrimSpace(records[0][0]) != "Key" || strings.TrimSpace(records[0][1]) != "Value" {
		return nil, errors.NewValueError("ReadColumnGroups", "expected a Key,Value header")
	}

	known := make(map[string]bool, len(GroupNames))
	for _, name := range GroupNames {
		known[name] = true
	}
	g := &ColumnGroups{groups: make(map[string]string, len(records)-1)}
	for _, rec := range records[1:] {
		key, group := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if !known[group] {
			return nil, errors.NewValidationError(key, "unknown column group", group)
		}
		g.groups[key] = group
	}
	return g, nil
}

// Group returns the group of column.
func (g *ColumnGroups) Group(column string) (string, bool) {
	if group, ok := g.groups[column]; ok {
		return group, true
	}
	if strings.HasPrefix(column, FeaturePrefix) {
		return AuxiliaryPredictionFeatures, true
	}
	return "", false
}

// Set assigns column to group.
func (g *ColumnGroups) Set(column, group string) {
	g.groups[column] = group
}

// Grouped lists the columns of each group in frame order.
type Grouped map[string][]string

// Columns concatenates the columns of the given groups in argument order.
func (g Grouped) Columns(groups ...string) []string {
	var out []string
	for _, group := range groups {
		out = append(out, g[group]...)
	}
	return out
}

// PredictionFeatures returns the key then auxiliary prediction features.
func (g Grouped) PredictionFeatures() []string {
	return g.Columns(KeyPredictionFeatures, AuxiliaryPredictionFeatures)
}

// GroupColumns assigns every column of f to a group. A column without a
// group is an error.
func GroupColumns(f *frame.Frame, groups *ColumnGroups) (Grouped, error) {
	out := make(Grouped, len(GroupNames))
	for _, name := range f.Names() {
		group, ok := groups.Group(name)
		if !ok {
			return nil, errors.NewColumnError("GroupColumns", name, "has no column group")
		}
		out[group] = append(out[group], name)
	}
	return out, nil
}

// DropMissingKeyFeatures drops the rows in which a key prediction feature
// was imputed, then removes that feature's sentinel column.
func DropMissingKeyFeatures(f *frame.Frame, groups *ColumnGroups) (*frame.Frame, error) {
	logger := stepLogger("drop_missing_key_features")
	out := f
	total := 0
	for _, name := range f.Names() {
		if group, ok := groups.Group(name); !ok || group != KeyPredictionFeatures {
			continue
		}
		sentinel := name + MissingSuffix
		if !out.Has(sentinel) {
			continue
		}
		flags, err := out.Float(sentinel)
		if err != nil {
			return nil, err
		}
		var dropped int
		out, dropped = out.DropRows(func(i int) bool { return flags[i] == 1 })
		if err := out.Drop(sentinel); err != nil {
			return nil, err
		}
		total += dropped
	}
	logger.Debug("Dropped listings missing key features", droppedRows(total, out.Len())...)
	return out, nil
}
