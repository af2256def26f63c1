package domain

const (
	RoleFamily    = "FAMILY"
	RoleCaregiver = "CAREGIVER"
	RoleAdmin     = "ADMIN"
)

// IsStaff reports whether role carries facility-scoped authority.
func IsStaff(role string) bool {
	return role == RoleCaregiver || role == RoleAdmin
}

// Notification types. The set is closed; the emitter drops anything else.
const (
	NotificationPostCreated          = "POST_CREATED"
	NotificationCommentCreated       = "COMMENT_CREATED"
	NotificationPostLiked            = "POST_LIKED"
	NotificationMedicalRecordCreated = "MEDICAL_RECORD_CREATED"
	NotificationFamilyRequest        = "FAMILY_REQUEST"
	NotificationFamilyApproved       = "FAMILY_APPROVED"
	NotificationFamilyRejected       = "FAMILY_REJECTED"
	NotificationOrderCreated         = "ORDER_CREATED"
	NotificationOrderStatusChanged   = "ORDER_STATUS_CHANGED"
	NotificationOther                = "OTHER"
)

var notificationTypes = map[string]struct{}{
	NotificationPostCreated:          {},
	NotificationCommentCreated:       {},
	NotificationPostLiked:            {},
	NotificationMedicalRecordCreated: {},
	NotificationFamilyRequest:        {},
	NotificationFamilyApproved:       {},
	NotificationFamilyRejected:       {},
	NotificationOrderCreated:         {},
	NotificationOrderStatusChanged:   {},
	NotificationOther:                {},
}

func IsNotificationType(t string) bool {
	_, ok := notificationTypes[t]
	return ok
}

// Related types used as polymorphic back-references on notifications.
const (
	RelatedResident      = "Resident"
	RelatedPost          = "Post"
	RelatedMedicalRecord = "MedicalRecord"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// MaxRelationshipLength bounds the free-text relationship label, in characters.
const MaxRelationshipLength = 50
