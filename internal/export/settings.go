package export

import (
	"fmt"
	"os/user"
	"strings"
	"time"

	"github.com/n0roo/ikd-kit/internal/derive"
	"github.com/n0roo/ikd-kit/internal/pattern"
)

// TimestampLayout is the user_info timestamp format (yymmdd HH.MM.SS)
const TimestampLayout = "060102 15.04.05"

// Resource field keys
const (
	FieldAdapterRead1 = "adapter_read1"
	FieldAdapterRead2 = "adapter_read2"
	FieldKitType      = "kit_type"
	FieldCyclesR1     = "override_cycles_pattern_r1"
	FieldCyclesI1     = derive.FieldI1
	FieldCyclesI2     = derive.FieldI2
	FieldCyclesR2     = "override_cycles_pattern_r2"
)

// Kit field keys
const (
	FieldName        = "name"
	FieldDisplayName = "display_name"
	FieldVersion     = "version"
	FieldDescription = "description"
)

// DefaultReadCycles is preset for both read patterns when a table is loaded
const DefaultReadCycles = "Yx"

// FieldError reports settings that block an export
type FieldError struct {
	Reason string
	Fields []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

// UserInfo identifies who produced an export and from which file
type UserInfo struct {
	User      string `json:"user" yaml:"user"`
	ADUser    string `json:"ad_user" yaml:"ad_user"`
	FilePath  string `json:"file_path" yaml:"file_path"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// NewUserInfo fills the login name and stamps now
func NewUserInfo(name, filePath string, now time.Time) UserInfo {
	info := UserInfo{User: name, ADUser: loginName(), FilePath: filePath, Timestamp: now.Format(TimestampLayout)}
	if info.User == "" {
		info.User = info.ADUser
	}
	return info
}

func loginName() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

// KitSettings is the index kit description entered by the user
type KitSettings struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
}

// KitFields lists the kit setting keys in form order
var KitFields = []string{FieldName, FieldDisplayName, FieldVersion, FieldDescription}

func (k *KitSettings) field(key string) (*string, bool) {
	switch key {
	case FieldName:
		return &k.Name, true
	case FieldDisplayName:
		return &k.DisplayName, true
	case FieldVersion:
		return &k.Version, true
	case FieldDescription:
		return &k.Description, true
	}
	return nil, false
}

// Get returns the value of key
func (k KitSettings) Get(key string) (string, bool) {
	p, ok := k.field(key)
	if !ok {
		return "", false
	}
	return *p, true
}

// Set assigns key after checking its grammar
func (k *KitSettings) Set(key, value string) error {
	p, ok := k.field(key)
	if !ok {
		return fmt.Errorf("unknown index kit field: %s", key)
	}
	if err := check(key, value); err != nil {
		return err
	}
	*p = value
	return nil
}

// Validate checks the kit settings are ready for export
func (k KitSettings) Validate() error {
	var missing []string
	for _, key := range []string{FieldName, FieldDisplayName, FieldVersion} {
		if v, _ := k.Get(key); v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &FieldError{Reason: "Missing required index kit fields", Fields: missing}
	}
	var invalid []string
	if !pattern.Name.Complete(k.Name) {
		invalid = append(invalid, FieldName)
	}
	if !pattern.Version.Complete(k.Version) {
		invalid = append(invalid, FieldVersion)
	}
	if len(invalid) > 0 {
		return &FieldError{Reason: "Invalid index kit fields", Fields: invalid}
	}
	return nil
}

// ResourceSettings holds adapters, the kit type and override cycles
type ResourceSettings struct {
	AdapterRead1 string `json:"adapter_read1" yaml:"adapter_read1"`
	AdapterRead2 string `json:"adapter_read2" yaml:"adapter_read2"`
	KitType      string `json:"kit_type" yaml:"kit_type"`
	CyclesR1     string `json:"override_cycles_pattern_r1" yaml:"override_cycles_pattern_r1"`
	CyclesI1     string `json:"override_cycles_pattern_i1" yaml:"override_cycles_pattern_i1"`
	CyclesI2     string `json:"override_cycles_pattern_i2" yaml:"override_cycles_pattern_i2"`
	CyclesR2     string `json:"override_cycles_pattern_r2" yaml:"override_cycles_pattern_r2"`
}

// ResourceFields lists the resource setting keys in form order
var ResourceFields = []string{
	FieldAdapterRead1, FieldAdapterRead2, FieldKitType,
	FieldCyclesR1, FieldCyclesI1, FieldCyclesI2, FieldCyclesR2,
}

func (r *ResourceSettings) field(key string) (*string, bool) {
	switch key {
	case FieldAdapterRead1:
		return &r.AdapterRead1, true
	case FieldAdapterRead2:
		return &r.AdapterRead2, true
	case FieldKitType:
		return &r.KitType, true
	case FieldCyclesR1:
		return &r.CyclesR1, true
	case FieldCyclesI1:
		return &r.CyclesI1, true
	case FieldCyclesI2:
		return &r.CyclesI2, true
	case FieldCyclesR2:
		return &r.CyclesR2, true
	}
	return nil, false
}

// Get returns the value of key
func (r ResourceSettings) Get(key string) (string, bool) {
	p, ok := r.field(key)
	if !ok {
		return "", false
	}
	return *p, true
}

// Set assigns key after checking its grammar
func (r *ResourceSettings) Set(key, value string) error {
	p, ok := r.field(key)
	if !ok {
		return fmt.Errorf("unknown resource field: %s", key)
	}
	if err := check(key, value); err != nil {
		return err
	}
	*p = value
	return nil
}

// PresetReads sets both read patterns to DefaultReadCycles
func (r *ResourceSettings) PresetReads() {
	r.CyclesR1 = DefaultReadCycles
	r.CyclesR2 = DefaultReadCycles
}

// Apply writes a derived override-cycle update
func (r *ResourceSettings) Apply(u derive.Update) {
	if p, ok := r.field(u.Field); ok {
		*p = u.Value
	}
}

// Validate checks the override patterns are complete and adapters are valid
func (r ResourceSettings) Validate() error {
	complete := []struct {
		key string
		g   pattern.Grammar
	}{
		{FieldCyclesI1, pattern.Index},
		{FieldCyclesI2, pattern.Index},
		{FieldCyclesR1, pattern.Read},
		{FieldCyclesR2, pattern.Read},
	}
	for _, c := range complete {
		v, _ := r.Get(c.key)
		if !c.g.Complete(v) {
			return &FieldError{Reason: "Incomplete override cycle pattern field", Fields: []string{c.key}}
		}
	}
	var bad []string
	for _, key := range []string{FieldAdapterRead1, FieldAdapterRead2} {
		v, _ := r.Get(key)
		if pattern.Adapter.Validate(v) != pattern.Accepted {
			bad = append(bad, key)
		}
	}
	if len(bad) > 0 {
		return &FieldError{Reason: "Invalid adapter fields", Fields: bad}
	}
	return nil
}

// GrammarFor returns the grammar guarding a settings field, nil if free text
func GrammarFor(key string) pattern.Grammar {
	switch key {
	case FieldName:
		return pattern.Name
	case FieldVersion:
		return pattern.Version
	case FieldAdapterRead1, FieldAdapterRead2:
		return pattern.Adapter
	case FieldCyclesR1, FieldCyclesR2:
		return pattern.Read
	case FieldCyclesI1, FieldCyclesI2:
		return pattern.Index
	}
	return nil
}

// check rejects values that no further typing could make valid
func check(key, value string) error {
	g := GrammarFor(key)
	if g == nil {
		return nil
	}
	if g.Validate(value) == pattern.Rejected {
		return fmt.Errorf("invalid value for %s: %q", key, value)
	}
	return nil
}
