package get_hospital_appointments

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// ToServiceRequest собирает фильтр из query параметров.
// date задаёт один день; from/to задают период, to включительно по дню.
func ToServiceRequest(r *http.Request, actor domain.Actor, hospitalID string, loc *time.Location) (*models.ListHospitalAppointmentsRequest, error) {
	req := &models.ListHospitalAppointmentsRequest{
		Actor:        actor,
		HospitalID:   hospitalID,
		DepartmentID: handlers.QueryString(r, "department"),
		DoctorID:     handlers.QueryString(r, "doctor"),
		Status:       handlers.QueryString(r, "status"),
	}

	if raw := handlers.QueryString(r, "includeInactive"); raw != nil {
		v, err := strconv.ParseBool(*raw)
		if err != nil {
			return nil, fmt.Errorf("includeInactive: %w", err)
		}
		req.IncludeInactive = v
	}

	if raw := handlers.QueryString(r, "date"); raw != nil {
		day, err := time.ParseInLocation(domain.DateFormat, *raw, loc)
		if err != nil {
			return nil, fmt.Errorf("date: %w", err)
		}
		next := day.AddDate(0, 0, 1)
		req.From, req.To = &day, &next
		return req, nil
	}

	if raw := handlers.QueryString(r, "from"); raw != nil {
		from, err := time.ParseInLocation(domain.DateFormat, *raw, loc)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		req.From = &from
	}
	if raw := handlers.QueryString(r, "to"); raw != nil {
		to, err := time.ParseInLocation(domain.DateFormat, *raw, loc)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		end := to.AddDate(0, 0, 1)
		req.To = &end
	}

	return req, nil
}
