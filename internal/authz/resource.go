package authz

// Operation classifies what a caller wants to do with a resource.
type Operation string

const (
	OpRead   Operation = "read"
	OpList   Operation = "list"
	OpExport Operation = "export"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// IsWrite reports whether the operation mutates the resource. Unknown
// operations count as writes so the engine fails closed.
func (o Operation) IsWrite() bool {
	switch o {
	case OpRead, OpList, OpExport:
		return false
	default:
		return true
	}
}

// ResourceClass separates the three tenancy shapes a resource can have.
type ResourceClass int

const (
	// ClassSchoolScoped resources belong to exactly one school.
	ClassSchoolScoped ResourceClass = iota
	// ClassPlatformGlobal resources carry no school and are admin territory.
	ClassPlatformGlobal
	// ClassUserOwned resources belong to a single user account.
	ClassUserOwned
)

// RelationKey names the link dimension relationship access can use.
type RelationKey int

const (
	RelationNone RelationKey = iota
	RelationStudent
)

// ResourceType identifies a protected resource kind. The engine never
// queries business tables; each type declares its shape once here.
type ResourceType string

const (
	ResourceStudentRecord  ResourceType = "student_record"
	ResourceGradeEntry     ResourceType = "grade_entry"
	ResourceAttendance     ResourceType = "attendance"
	ResourceStaffRecord    ResourceType = "staff_record"
	ResourcePaymentLedger  ResourceType = "payment_ledger"
	ResourceLeaveRequest   ResourceType = "leave_request"
	ResourceSchoolGrant    ResourceType = "school_grant"
	ResourcePlatformConfig ResourceType = "platform_config"
	ResourceUserProfile    ResourceType = "user_profile"
)

type typeSpec struct {
	class      ResourceClass
	adminGated bool
	relation   RelationKey
}

var resourceTypes = map[ResourceType]typeSpec{
	ResourceStudentRecord:  {class: ClassSchoolScoped, relation: RelationStudent},
	ResourceGradeEntry:     {class: ClassSchoolScoped, relation: RelationStudent},
	ResourceAttendance:     {class: ClassSchoolScoped, relation: RelationStudent},
	ResourceStaffRecord:    {class: ClassSchoolScoped, adminGated: true},
	ResourcePaymentLedger:  {class: ClassSchoolScoped, adminGated: true},
	ResourceLeaveRequest:   {class: ClassSchoolScoped},
	ResourceSchoolGrant:    {class: ClassPlatformGlobal, adminGated: true},
	ResourcePlatformConfig: {class: ClassPlatformGlobal, adminGated: true},
	ResourceUserProfile:    {class: ClassUserOwned},
}

func specFor(t ResourceType) (typeSpec, bool) {
	spec, ok := resourceTypes[t]
	return spec, ok
}

// Resource is the minimal descriptor of one record. Controllers own the
// knowledge of which school/student/owner a row belongs to and populate
// the descriptor before asking for a decision.
type Resource struct {
	Type      ResourceType
	SchoolID  *int64
	OwnerID   *int64
	StudentID *int64
}

// SchoolResource builds a descriptor for a school-scoped record.
func SchoolResource(t ResourceType, schoolID int64) Resource {
	return Resource{Type: t, SchoolID: &schoolID}
}

// StudentResource builds a descriptor for a school-scoped record attached
// to a specific student.
func StudentResource(t ResourceType, schoolID, studentID int64) Resource {
	return Resource{Type: t, SchoolID: &schoolID, StudentID: &studentID}
}

// OwnedResource builds a descriptor for a user-owned record.
func OwnedResource(t ResourceType, ownerID int64) Resource {
	return Resource{Type: t, OwnerID: &ownerID}
}

// GlobalResource builds a descriptor for a platform-global record.
func GlobalResource(t ResourceType) Resource {
	return Resource{Type: t}
}
