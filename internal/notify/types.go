package notify

import (
	"fmt"
	"math/bits"
	"strings"
)

// NodeID identifies one of the two storage processors of the cluster.
type NodeID int

const (
	NodeA NodeID = iota
	NodeB
)

// MaxNodes is the number of nodes a cluster can have.
const MaxNodes = 2

// Peer returns the other node of the pair.
func (n NodeID) Peer() NodeID {
	if n == NodeA {
		return NodeB
	}

	return NodeA
}

// Valid reports whether n names a known node.
func (n NodeID) Valid() bool {
	return n == NodeA || n == NodeB
}

func (n NodeID) String() string {
	switch n {
	case NodeA:
		return "SPA"
	case NodeB:
		return "SPB"
	default:
		return fmt.Sprintf("SP(%d)", int(n))
	}
}

// ObjectID addresses an object in the topology.
type ObjectID uint32

// ObjectIDInvalid is the reserved "no such object" handle.
const ObjectIDInvalid ObjectID = 0x7FFFFFFF

// Usable reports whether id can address a real object.
func (id ObjectID) Usable() bool {
	return id != 0 && id != ObjectIDInvalid
}

// ObjectType is a bitmask of topology object classes.
type ObjectType uint64

const (
	ObjectTypeBoard ObjectType = 1 << iota
	ObjectTypePort
	ObjectTypeEnclosure
	ObjectTypePhysicalDrive
	ObjectTypeLogicalDrive
	ObjectTypeRaidGroup
	ObjectTypeLUN
	ObjectTypeVirtualDrive
	ObjectTypeProvisionedDrive
	ObjectTypeEnvironmentMgmt
	ObjectTypeExtentPool
	ObjectTypeExtPoolLUN

	objectTypeLast
)

const (
	// ObjectTypeSupported is every object type a wait may name.
	ObjectTypeSupported = objectTypeLast - 1

	// ObjectTypeAll is the wildcard carried by notifications that are not
	// about a single object (timer updates, encryption state).
	ObjectTypeAll ObjectType = ^ObjectType(0)
)

var objectTypeNames = map[ObjectType]string{
	ObjectTypeBoard:            "BOARD",
	ObjectTypePort:             "PORT",
	ObjectTypeEnclosure:        "ENCLOSURE",
	ObjectTypePhysicalDrive:    "PHYSICAL_DRIVE",
	ObjectTypeLogicalDrive:     "LOGICAL_DRIVE",
	ObjectTypeRaidGroup:        "RAID_GROUP",
	ObjectTypeLUN:              "LUN",
	ObjectTypeVirtualDrive:     "VIRTUAL_DRIVE",
	ObjectTypeProvisionedDrive: "PROVISIONED_DRIVE",
	ObjectTypeEnvironmentMgmt:  "ENVIRONMENT_MGMT",
	ObjectTypeExtentPool:       "EXTENT_POOL",
	ObjectTypeExtPoolLUN:       "EXT_POOL_LUN",
}

// Single reports whether t is exactly one supported object type.
func (t ObjectType) Single() bool {
	return bits.OnesCount64(uint64(t)) == 1 && t&ObjectTypeSupported == t
}

func (t ObjectType) String() string {
	if t == ObjectTypeAll {
		return "ALL"
	}

	return maskString(uint64(t), func(bit uint64) (string, bool) {
		name, ok := objectTypeNames[ObjectType(bit)]
		return name, ok
	})
}

// ParseObjectType resolves a name such as "LUN" or "raid_group".
func ParseObjectType(name string) (ObjectType, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	if want == "ALL" {
		return ObjectTypeAll, nil
	}

	for t, n := range objectTypeNames {
		if n == want {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown object type %q", name)
}

// Type is a bitmask of notification kinds.
type Type uint64

const (
	TypeLifecycleSpecialize Type = 1 << iota
	TypeLifecycleActivate
	TypeLifecycleReady
	TypeLifecycleHibernate
	TypeLifecycleOffline
	TypeLifecycleFail
	TypeLifecycleDestroy
	TypeLifecyclePendingReady
	TypeLifecyclePendingActivate
	TypeLifecyclePendingHibernate
	TypeLifecyclePendingOffline
	TypeLifecyclePendingFail
	TypeLifecyclePendingDestroy
	TypeObjectDataChanged
	TypeJobActionStateChanged
	TypeSwapInfo
	TypeDataReconstruction
	TypeConfigurationChanged
	TypeZeroing
	TypeEncryptionStateChanged
	TypeObjectCreated
	TypeObjectDestroyed

	typeLast
)

const (
	// TypeSupported is every notification type a wait may name.
	TypeSupported = typeLast - 1

	// TypeAll subscribes to every notification type.
	TypeAll Type = ^Type(0)

	// TypeJobOutcome is the notification carrying a finished job's status.
	TypeJobOutcome = TypeJobActionStateChanged
)

var typeNames = map[Type]string{
	TypeLifecycleSpecialize:       "LIFECYCLE_STATE_SPECIALIZE",
	TypeLifecycleActivate:         "LIFECYCLE_STATE_ACTIVATE",
	TypeLifecycleReady:            "LIFECYCLE_STATE_READY",
	TypeLifecycleHibernate:        "LIFECYCLE_STATE_HIBERNATE",
	TypeLifecycleOffline:          "LIFECYCLE_STATE_OFFLINE",
	TypeLifecycleFail:             "LIFECYCLE_STATE_FAIL",
	TypeLifecycleDestroy:          "LIFECYCLE_STATE_DESTROY",
	TypeLifecyclePendingReady:     "LIFECYCLE_STATE_PENDING_READY",
	TypeLifecyclePendingActivate:  "LIFECYCLE_STATE_PENDING_ACTIVATE",
	TypeLifecyclePendingHibernate: "LIFECYCLE_STATE_PENDING_HIBERNATE",
	TypeLifecyclePendingOffline:   "LIFECYCLE_STATE_PENDING_OFFLINE",
	TypeLifecyclePendingFail:      "LIFECYCLE_STATE_PENDING_FAIL",
	TypeLifecyclePendingDestroy:   "LIFECYCLE_STATE_PENDING_DESTROY",
	TypeObjectDataChanged:         "OBJECT_DATA_CHANGED",
	TypeJobActionStateChanged:     "JOB_ACTION_STATE_CHANGED",
	TypeSwapInfo:                  "SWAP_INFO",
	TypeDataReconstruction:        "DATA_RECONSTRUCTION",
	TypeConfigurationChanged:      "CONFIGURATION_CHANGED",
	TypeZeroing:                   "ZEROING",
	TypeEncryptionStateChanged:    "ENCRYPTION_STATE_CHANGED",
	TypeObjectCreated:             "OBJECT_CREATED",
	TypeObjectDestroyed:           "OBJECT_DESTROYED",
}

// Single reports whether t is exactly one supported notification type.
func (t Type) Single() bool {
	return bits.OnesCount64(uint64(t)) == 1 && t&TypeSupported == t
}

func (t Type) String() string {
	if t == TypeAll {
		return "ALL"
	}

	return maskString(uint64(t), func(bit uint64) (string, bool) {
		name, ok := typeNames[Type(bit)]
		return name, ok
	})
}

// ParseType resolves a notification type name such as "LIFECYCLE_STATE_READY".
func ParseType(name string) (Type, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == want {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown notification type %q", name)
}

func maskString(mask uint64, name func(uint64) (string, bool)) string {
	if mask == 0 {
		return "INVALID"
	}

	var parts []string
	for mask != 0 {
		bit := mask & -mask
		mask &^= bit

		if n, ok := name(bit); ok {
			parts = append(parts, n)
		} else {
			parts = append(parts, fmt.Sprintf("0x%x", bit))
		}
	}

	return strings.Join(parts, "|")
}

// Package identifies the software package that emitted a notification.
type Package int

const (
	PackageInvalid Package = iota
	PackagePhysical
	PackageSEP
	PackageESP
	PackageNEIT
)

func (p Package) String() string {
	switch p {
	case PackagePhysical:
		return "physical"
	case PackageSEP:
		return "sep"
	case PackageESP:
		return "esp"
	case PackageNEIT:
		return "neit"
	default:
		return "invalid"
	}
}

// ClassID is the class of the object that emitted a notification.
type ClassID int

const (
	ClassIDInvalid ClassID = iota
	ClassIDProvisionDrive
	ClassIDVirtualDrive
	ClassIDParity
	ClassIDStriper
	ClassIDMirror
	ClassIDLUN
	ClassIDExtentPool
)

// JobStatus is the terminal status of a job.
type JobStatus int

const (
	JobStatusOK JobStatus = iota
	JobStatusGenericFailure
	JobStatusBusy
	JobStatusTimeout
)

func (s JobStatus) String() string {
	switch s {
	case JobStatusOK:
		return "OK"
	case JobStatusGenericFailure:
		return "GENERIC_FAILURE"
	case JobStatusBusy:
		return "BUSY"
	case JobStatusTimeout:
		return "TIMEOUT"
	default:
		return fmt.Sprintf("JobStatus(%d)", int(s))
	}
}

// JobErrorCode qualifies a job's terminal status.
type JobErrorCode int

const (
	JobErrorNone JobErrorCode = iota
	JobErrorInternal
	JobErrorInvalidConfiguration
	JobErrorNoSparesAvailable
	JobErrorNoSuitableSpare
	JobErrorRaidGroupBroken
	JobErrorSwapValidationFail
)

func (c JobErrorCode) String() string {
	switch c {
	case JobErrorNone:
		return "NO_ERROR"
	case JobErrorInternal:
		return "INTERNAL_ERROR"
	case JobErrorInvalidConfiguration:
		return "INVALID_CONFIGURATION"
	case JobErrorNoSparesAvailable:
		return "PRESENTLY_NO_SPARES_AVAILABLE"
	case JobErrorNoSuitableSpare:
		return "PRESENTLY_NO_SUITABLE_SPARE"
	case JobErrorRaidGroupBroken:
		return "PRESENTLY_RAID_GROUP_BROKEN"
	case JobErrorSwapValidationFail:
		return "SWAP_VALIDATION_FAIL"
	default:
		return fmt.Sprintf("JobErrorCode(%d)", int(c))
	}
}

// JobOutcome is the payload of a job-outcome notification.
type JobOutcome struct {
	Number    uint64
	Status    JobStatus
	ErrorCode JobErrorCode
}

// Notification is one asynchronous event delivered by a node.
type Notification struct {
	ObjectID      ObjectID
	ObjectType    ObjectType
	Type          Type
	SourcePackage Package
	ClassID       ClassID

	// Job is set only for job-outcome notifications.
	Job *JobOutcome

	// Data is opaque to the barrier.
	Data []byte
}

// Clone returns a deep copy so a captured notification cannot alias the
// sender's buffers.
func (n Notification) Clone() Notification {
	out := n
	if n.Job != nil {
		job := *n.Job
		out.Job = &job
	}

	if n.Data != nil {
		out.Data = append([]byte(nil), n.Data...)
	}

	return out
}

func (n Notification) String() string {
	s := fmt.Sprintf("obj=0x%x type=%s notif=%s", uint32(n.ObjectID), n.ObjectType, n.Type)
	if n.Job != nil {
		s += fmt.Sprintf(" job=%d status=%s err=%s", n.Job.Number, n.Job.Status, n.Job.ErrorCode)
	}

	return s
}
