package apperr

const (
	CodeInternal             = "INTERNAL_ERROR"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidTimeFormat    = "INVALID_TIME_FORMAT"
	CodeInvalidTimeRange     = "INVALID_TIME_RANGE"
	CodeInvalidDate          = "INVALID_DATE"
	CodeInvalidDayOfWeek     = "INVALID_DAY_OF_WEEK"
	CodeInvalidHourlyRate    = "INVALID_HOURLY_RATE"
	CodeInvalidRating        = "INVALID_RATING"
	CodeInvalidSubjectID     = "INVALID_SUBJECT_ID"
	CodeInvalidEducationYear = "INVALID_EDUCATION_YEARS"
	CodeTutorProfileNotFound = "TUTOR_PROFILE_NOT_FOUND"
	CodeTutorProfileExists   = "TUTOR_PROFILE_EXISTS"
	CodeAvailabilityNotFound = "AVAILABILITY_NOT_FOUND"
	CodeEducationNotFound    = "EDUCATION_NOT_FOUND"
	CodeNoAvailability       = "NO_AVAILABILITY"
	CodeOutsideAvailability  = "OUTSIDE_AVAILABILITY"
	CodeSlotNotFound         = "TIME_SLOT_NOT_FOUND"
	CodeSlotOverlap          = "SLOT_OVERLAP"
	CodeSlotBooked           = "TIME_SLOT_BOOKED"
	CodeSlotAlreadyBooked    = "SLOT_ALREADY_BOOKED"
	CodeSubjectNotTaught     = "SUBJECT_NOT_TAUGHT"
	CodeSubjectNotAssigned   = "SUBJECT_NOT_ASSIGNED"
	CodeSubjectInUse         = "SUBJECT_IN_USE"
	CodeDuplicateSubject     = "DUPLICATE_SUBJECT"
	CodeBookingNotFound      = "BOOKING_NOT_FOUND"
	CodeAlreadyCancelled     = "ALREADY_CANCELLED"
	CodeBookingConfirmed     = "BOOKING_CONFIRMED"
	CodeCannotCancelComplete = "CANNOT_CANCEL_COMPLETE"
	CodeInvalidStatus        = "INVALID_BOOKING_STATUS"
	CodeNotAuthorized        = "NOT_AUTHORIZED"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeAccountBanned        = "ACCOUNT_BANNED"
	CodeSessionNotCompleted  = "SESSION_NOT_COMPLETED"
	CodeReviewAlreadyExists  = "REVIEW_ALREADY_EXISTS"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeStatusUnchanged      = "STATUS_UNCHANGED"
)

// Шаблоны ошибок. Сервисы возвращают их как есть или через WithDetail.
var (
	ErrInvalidInput      = New(KindInvalidInput, CodeInvalidInput, "invalid input")
	ErrInvalidTimeFormat = New(KindInvalidInput, CodeInvalidTimeFormat, "invalid time format")
	ErrInvalidTimeRange  = New(KindInvalidInput, CodeInvalidTimeRange, "invalid time format or range")
	ErrInvalidDate       = New(KindInvalidInput, CodeInvalidDate, "invalid date format")
	ErrInvalidDayOfWeek  = New(KindInvalidInput, CodeInvalidDayOfWeek, "invalid day of week")
	ErrInvalidHourlyRate = New(KindInvalidInput, CodeInvalidHourlyRate, "hourly rate must be greater than zero")
	ErrInvalidRating     = New(KindInvalidInput, CodeInvalidRating, "rating must be between 0 and 5")
	ErrInvalidSubjectID  = New(KindInvalidInput, CodeInvalidSubjectID, "some subject ids are invalid")
	ErrInvalidEducation  = New(KindInvalidInput, CodeInvalidEducationYear, "start year must not be after end year")

	ErrTutorProfileNotFound = New(KindNotFound, CodeTutorProfileNotFound, "tutor profile not found")
	ErrAvailabilityNotFound = New(KindNotFound, CodeAvailabilityNotFound, "availability not found for this tutor")
	ErrEducationNotFound    = New(KindNotFound, CodeEducationNotFound, "education not found for this tutor")
	ErrSlotNotFound         = New(KindNotFound, CodeSlotNotFound, "time slot not found")
	ErrBookingNotFound      = New(KindNotFound, CodeBookingNotFound, "booking not found")
	ErrSubjectNotAssigned   = New(KindNotFound, CodeSubjectNotAssigned, "subject not found in tutor profile")
	ErrUserNotFound         = New(KindNotFound, CodeUserNotFound, "user not found")

	ErrUnauthorized    = New(KindUnauthorized, CodeUnauthorized, "unauthorized access")
	ErrNotAuthorized   = New(KindForbidden, CodeNotAuthorized, "not allowed to act on this booking")
	ErrNotBookingOwner = New(KindForbidden, CodeUnauthorized, "not the student of this booking")

	ErrTutorProfileExists  = New(KindConflict, CodeTutorProfileExists, "tutor profile already exists")
	ErrSlotOverlap         = New(KindConflict, CodeSlotOverlap, "time slot overlaps with existing slot")
	ErrSlotBooked          = New(KindConflict, CodeSlotBooked, "time slot already booked")
	ErrSlotAlreadyBooked   = New(KindConflict, CodeSlotAlreadyBooked, "time slot already booked")
	ErrDuplicateSubject    = New(KindConflict, CodeDuplicateSubject, "all subjects already added")
	ErrReviewAlreadyExists = New(KindConflict, CodeReviewAlreadyExists, "booking already reviewed")

	ErrNoAvailability       = New(KindPreconditionFailed, CodeNoAvailability, "no availability for this day")
	ErrOutsideAvailability  = New(KindPreconditionFailed, CodeOutsideAvailability, "time slot outside availability")
	ErrSubjectNotTaught     = New(KindPreconditionFailed, CodeSubjectNotTaught, "tutor does not teach this subject")
	ErrSubjectInUse         = New(KindPreconditionFailed, CodeSubjectInUse, "subject has confirmed bookings")
	ErrAlreadyCancelled     = New(KindPreconditionFailed, CodeAlreadyCancelled, "booking already cancelled")
	ErrBookingConfirmed     = New(KindPreconditionFailed, CodeBookingConfirmed, "booking has been confirmed by tutor")
	ErrCannotCancelComplete = New(KindPreconditionFailed, CodeCannotCancelComplete, "completed booking cannot be cancelled")
	ErrInvalidStatus        = New(KindPreconditionFailed, CodeInvalidStatus, "booking status does not allow this action")
	ErrAccountBanned        = New(KindPreconditionFailed, CodeAccountBanned, "account is banned")
	ErrSessionNotCompleted  = New(KindPreconditionFailed, CodeSessionNotCompleted, "review allowed only after session is complete")
	ErrStatusUnchanged      = New(KindPreconditionFailed, CodeStatusUnchanged, "user already has this status")
)
