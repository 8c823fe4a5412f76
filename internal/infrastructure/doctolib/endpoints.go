package doctolib

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/example/doctoshotgun/internal/domain/booking"
	"github.com/example/doctoshotgun/internal/internaltypes"
)

var _ booking.Provider = (*Client)(nil)

// Login opens the login form (for the session cookies) and posts the
// credentials. A 4xx answer means wrong credentials.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if _, err := c.Do(ctx, http.MethodGet, "/sessions/new", nil, nil, nil); err != nil {
		return fmt.Errorf("login page: %w", err)
	}
	_, err := c.Do(ctx, http.MethodPost, "/login.json", nil, map[string]any{
		"kind":              "patient",
		"username":          username,
		"password":          password,
		"remember":          true,
		"remember_username": true,
	}, nil)
	if internaltypes.IsClientError(err) {
		return fmt.Errorf("login: %w", internaltypes.ErrUnauthorized)
	}
	return err
}

func (c *Client) MasterPatients(ctx context.Context) ([]booking.Patient, error) {
	var patients []booking.Patient
	if err := c.getJSON(ctx, "/account/master_patients.json", nil, &patients); err != nil {
		return nil, fmt.Errorf("master patients: %w", err)
	}
	return patients, nil
}

func refMotiveParams(refMotiveIDs []string) url.Values {
	return url.Values{"ref_visit_motive_ids[]": refMotiveIDs}
}

func (c *Client) SearchCenters(ctx context.Context, city string, refMotiveIDs []string) ([]booking.ID, error) {
	res, err := c.Do(ctx, http.MethodGet, "/impfung-covid-19-corona/"+url.PathEscape(city), refMotiveParams(refMotiveIDs), nil, nil)
	if errors.Is(err, internaltypes.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", booking.ErrCityNotFound, city)
	}
	if err != nil {
		return nil, err
	}
	ids, err := searchResultIDs(res.Body)
	if err != nil {
		return nil, fmt.Errorf("centers page: %w", err)
	}
	c.logger.Debug("centers page parsed", zap.String("city", city), zap.Int("results", len(ids)))
	return ids, nil
}

func (c *Client) CenterResult(ctx context.Context, id booking.ID, refMotiveIDs []string) (*booking.Center, error) {
	params := refMotiveParams(refMotiveIDs)
	params.Set("limit", "4")
	params.Set("search_result_format", "json")
	res, err := c.Do(ctx, http.MethodGet, "/search_results/"+url.PathEscape(id.String())+".json", params, nil, nil)
	if err != nil {
		return nil, err
	}
	sr := gjson.GetBytes(res.Body, "search_result")
	if !sr.Exists() || !sr.IsObject() {
		return nil, nil
	}
	var center booking.Center
	if err := (&Response{Body: []byte(sr.Raw), URL: res.URL}).JSON(&center); err != nil {
		return nil, err
	}
	return &center, nil
}

// OpenCenter loads the public center page; the service expects it before
// the booking JSON is requested.
func (c *Client) OpenCenter(ctx context.Context, centerURL string) error {
	_, err := c.Do(ctx, http.MethodGet, centerURL, nil, nil, nil)
	return err
}

func (c *Client) BookingPage(ctx context.Context, slug string) (*booking.BookingPage, error) {
	var p booking.BookingPage
	if err := c.getJSON(ctx, "/booking/"+url.PathEscape(slug)+".json", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func availabilityParams(q booking.AvailabilityQuery) url.Values {
	params := url.Values{}
	params.Set("start_date", q.StartDate)
	params.Set("visit_motive_ids", q.MotiveIDs)
	params.Set("agenda_ids", q.AgendaIDs)
	params.Set("insurance_sector", "public")
	params.Set("practice_ids", q.PracticeID.String())
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.FirstSlot != "" {
		params.Set("first_slot", q.FirstSlot)
	}
	if q.DestroyTemporary {
		params.Set("destroy_temporary", "true")
	}
	return params
}

func (c *Client) Availabilities(ctx context.Context, q booking.AvailabilityQuery) (*booking.Availabilities, error) {
	var a booking.Availabilities
	if err := c.getJSON(ctx, "/availabilities.json", availabilityParams(q), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) SecondShotAvailabilities(ctx context.Context, q booking.AvailabilityQuery) (*booking.Availabilities, error) {
	var a booking.Availabilities
	if err := c.getJSON(ctx, "/second_shot_availabilities.json", availabilityParams(q), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func appointmentBody(req booking.AppointmentRequest) map[string]any {
	body := map[string]any{
		"agenda_ids": req.AgendaIDs,
		"appointment": map[string]any{
			"profile_id":       req.ProfileID,
			"source_action":    "profile",
			"insurance_sector": "public",
			"new_patient":      true,
			"start_date":       req.StartDate,
			"visit_motive_ids": req.MotiveIDs,
		},
		"practice_ids": []booking.ID{req.PracticeID},
	}
	if req.SecondSlot != "" {
		body["second_slot"] = req.SecondSlot
	}
	return body
}

// CreateAppointment posts a first-dose create or a second-dose update. A
// rejected slot is reported through AppointmentResult.Error, whether the
// service answered 200 or 4xx.
func (c *Client) CreateAppointment(ctx context.Context, req booking.AppointmentRequest) (*booking.AppointmentResult, error) {
	res, err := c.Do(ctx, http.MethodPost, "/appointments.json", nil, appointmentBody(req), nil)
	rejected := res != nil && gjson.GetBytes(res.Body, "error").Exists()
	if err != nil && !(rejected && internaltypes.IsClientError(err)) {
		return nil, err
	}
	// "error" may be a string, an object or null; its presence is what
	// matters.
	out := &booking.AppointmentResult{ID: booking.ID(gjson.GetBytes(res.Body, "id").String())}
	if rejected {
		e := gjson.GetBytes(res.Body, "error")
		msg := e.String()
		if msg == "" {
			msg = e.Raw
		}
		out.Error = &msg
	}
	return out, nil
}

func (c *Client) AppointmentEdit(ctx context.Context, id booking.ID, patientID booking.ID) (*booking.AppointmentEdit, error) {
	var params url.Values
	if patientID != "" {
		params = url.Values{"master_patient_id": {patientID.String()}}
	}
	var e booking.AppointmentEdit
	if err := c.getJSON(ctx, "/appointments/"+url.PathEscape(id.String())+"/edit.json", params, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) FinalizeAppointment(ctx context.Context, id booking.ID, req booking.FinalizeRequest) (*booking.FinalizeResult, error) {
	fields := req.CustomFields
	if fields == nil {
		fields = map[string]string{}
	}
	body := map[string]any{
		"appointment": map[string]any{
			"custom_fields_values":  fields,
			"new_patient":           true,
			"qualification_answers": map[string]any{},
			"referrer_id":           nil,
		},
		"bypass_mandatory_relative_contact_info": false,
		"email":                                  nil,
		"master_patient":                         req.Patient,
		"new_patient":                            true,
		"patient":                                nil,
		"phone_number":                           nil,
	}
	res, err := c.Do(ctx, http.MethodPut, "/appointments/"+url.PathEscape(id.String())+".json", nil, body, nil)
	if err != nil {
		return nil, err
	}
	var out booking.FinalizeResult
	if err := res.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Appointment(ctx context.Context, id booking.ID) (*booking.AppointmentStatus, error) {
	var s booking.AppointmentStatus
	if err := c.getJSON(ctx, "/appointments/"+url.PathEscape(id.String())+".json", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
