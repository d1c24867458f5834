package check_doctor_availability

// Request модель запроса на проверку доступности врача
type Request struct {
	DoctorID string  // ID врача (ObjectID)
	Date     string  // YYYY-MM-DD или полная дата-время
	TimeSlot *string // Время HH:MM (опционально)
}

// Response результат проверки
type Response struct {
	Available bool
	Message   string
}

const (
	msgAvailable   = "Doctor is available"
	msgNotWorking  = "Doctor is not available on %s"
	msgOnLeave     = "Doctor is on leave on this date"
	msgAlreadyBusy = "Doctor already has an appointment at this time"
)
