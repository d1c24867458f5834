package patientservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// Client клиент для работы с сервисом пациентов
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetPatient получает данные пациента по ID
func (c *Client) GetPatient(ctx context.Context, patientID string) (*Patient, error) {
	endpoint := fmt.Sprintf("%s/internal/patients/%s", c.baseURL, url.PathEscape(patientID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid patient ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return nil, ErrPatientNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var patient Patient
	if err := json.NewDecoder(resp.Body).Decode(&patient); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &patient, nil
}

// GetPatientWithGracefulDegradation получает пациента с graceful degradation.
// При недоступности сервиса возвращает ErrServiceDegraded, и запись отдаётся без данных пациента.
func (c *Client) GetPatientWithGracefulDegradation(ctx context.Context, patientID string) (*Patient, error) {
	patient, err := c.GetPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			c.log.Warn("Patient not found: patient_id=%s", patientID)
			return nil, err
		}

		c.log.Error("PatientService unavailable, applying graceful degradation for patient_id=%s: %v", patientID, err)
		return nil, fmt.Errorf("%w: patient_id=%s, error=%v", ErrServiceDegraded, patientID, err)
	}

	return patient, nil
}
