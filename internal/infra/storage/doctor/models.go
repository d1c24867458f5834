package doctor

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// doctorDocument документ коллекции doctors
type doctorDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	FullName       string             `bson:"fullName"`
	Specialization string             `bson:"specialization,omitempty"`
	HospitalID     string             `bson:"hospitalId"`
	DepartmentID   string             `bson:"departmentId"`
	AvailableDays  []string           `bson:"availableDays"`
	Leaves         []leaveDocument    `bson:"leaves"`
}

type leaveDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	StartDate time.Time          `bson:"startDate"`
	EndDate   time.Time          `bson:"endDate"`
	Reason    *string            `bson:"reason,omitempty"`
}

func (d *doctorDocument) toDomain() *domain.Doctor {
	return &domain.Doctor{
		ID:             d.ID.Hex(),
		FullName:       d.FullName,
		Specialization: d.Specialization,
		HospitalID:     d.HospitalID,
		DepartmentID:   d.DepartmentID,
		AvailableDays:  d.AvailableDays,
		Leaves:         leavesToDomain(d.Leaves),
	}
}

func leavesToDomain(docs []leaveDocument) []domain.Leave {
	leaves := make([]domain.Leave, 0, len(docs))
	for _, l := range docs {
		leaves = append(leaves, domain.Leave{
			ID:        l.ID.Hex(),
			StartDate: l.StartDate,
			EndDate:   l.EndDate,
			Reason:    l.Reason,
		})
	}
	return leaves
}

func fromDomain(d *domain.Doctor) (*doctorDocument, error) {
	id, err := primitive.ObjectIDFromHex(d.ID)
	if err != nil {
		return nil, ErrInvalidID
	}

	leaves := make([]leaveDocument, 0, len(d.Leaves))
	for _, l := range d.Leaves {
		leaveID, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			leaveID = primitive.NewObjectID()
		}
		leaves = append(leaves, leaveDocument{
			ID:        leaveID,
			StartDate: l.StartDate,
			EndDate:   l.EndDate,
			Reason:    l.Reason,
		})
	}

	availableDays := d.AvailableDays
	if availableDays == nil {
		availableDays = []string{}
	}

	return &doctorDocument{
		ID:             id,
		FullName:       d.FullName,
		Specialization: d.Specialization,
		HospitalID:     d.HospitalID,
		DepartmentID:   d.DepartmentID,
		AvailableDays:  availableDays,
		Leaves:         leaves,
	}, nil
}
