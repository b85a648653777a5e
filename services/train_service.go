package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"train-booking-backend/models"
	"train-booking-backend/utils"
)

type FareTypeInput struct {
	ClassType      string          `json:"classType" validate:"required"`
	Price          decimal.Decimal `json:"price"`
	SeatsAvailable int             `json:"seatsAvailable" validate:"min=0,max=1000"`
}

type TrainInput struct {
	TrainName     string          `json:"trainName" validate:"required,min=2,max=100"`
	Source        string          `json:"source" validate:"required,min=2,max=100"`
	Destination   string          `json:"destination" validate:"required,min=2,max=100"`
	DepartureTime string          `json:"departureTime" validate:"required"`
	ArrivalTime   string          `json:"arrivalTime" validate:"required"`
	Status        string          `json:"status"`
	ScheduleDays  []string        `json:"scheduleDays"`
	FareTypes     []FareTypeInput `json:"fareTypes" validate:"dive"`
}

// TrainSearchCriteria filters trains; empty fields are ignored. Status defaults to ACTIVE.
type TrainSearchCriteria struct {
	Source          string `json:"source" form:"source"`
	Destination     string `json:"destination" form:"destination"`
	Status          string `json:"status" form:"status"`
	DepartureAfter  string `json:"departureTimeAfter" form:"departureTimeAfter"`
	DepartureBefore string `json:"departureTimeBefore" form:"departureTimeBefore"`
	TrainName       string `json:"trainName" form:"trainName"`
	DayOfWeek       string `json:"dayOfWeek" form:"dayOfWeek"`
}

type TrainService struct {
	DB *gorm.DB
}

func NewTrainService(db *gorm.DB) *TrainService {
	return &TrainService{DB: db}
}

// parseClock reads "15:04" or "15:04:05".
func parseClock(s string) (datatypes.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q", s)
}

type trainFields struct {
	status    models.TrainStatus
	departure datatypes.Time
	arrival   datatypes.Time
	days      []models.DayOfWeek
	fareTypes []models.FareType
}

// checkTrainInput validates the request and converts its loosely typed fields.
func checkTrainInput(ctx context.Context, in *TrainInput) (trainFields, error) {
	in.TrainName = strings.TrimSpace(in.TrainName)
	in.Source = strings.TrimSpace(in.Source)
	in.Destination = strings.TrimSpace(in.Destination)

	var out trainFields
	extra := FieldErrors{}

	out.status = models.TrainActive
	if strings.TrimSpace(in.Status) != "" {
		st, ok := models.ParseTrainStatus(in.Status)
		if !ok {
			extra["status"] = "must be one of: ACTIVE, INACTIVE"
		}
		out.status = st
	}

	var err error
	if in.DepartureTime != "" {
		if out.departure, err = parseClock(in.DepartureTime); err != nil {
			extra["departureTime"] = "must be a time in HH:MM or HH:MM:SS format"
		}
	}
	if in.ArrivalTime != "" {
		if out.arrival, err = parseClock(in.ArrivalTime); err != nil {
			extra["arrivalTime"] = "must be a time in HH:MM or HH:MM:SS format"
		}
	}

	seen := map[models.ClassType]bool{}
	for i, f := range in.FareTypes {
		key := fmt.Sprintf("fareTypes[%d]", i)
		ct, ok := models.ParseClassType(f.ClassType)
		switch {
		case strings.TrimSpace(f.ClassType) == "":
		case !ok:
			extra[key+".classType"] = "must be one of: " + strings.Join(lo.Map(models.ClassTypes(), func(c models.ClassType, _ int) string { return string(c) }), ", ")
		case seen[ct]:
			extra[key+".classType"] = "is duplicated"
		}
		seen[ct] = true
		checkMoney(extra, key+".price", f.Price)
		out.fareTypes = append(out.fareTypes, models.FareType{
			ClassType:      ct,
			Price:          f.Price.Round(2),
			SeatsAvailable: f.SeatsAvailable,
		})
	}

	if err := mergeFieldErrors(validateStruct(in), extra); err != nil {
		return out, err
	}

	if out.arrival <= out.departure {
		return out, validationf("Arrival time must be after departure time")
	}
	if strings.EqualFold(in.Source, in.Destination) {
		return out, validationf("Source and destination must be different")
	}

	for _, d := range in.ScheduleDays {
		day, ok := models.ParseDayOfWeek(d)
		if !ok {
			utils.Log(ctx).WithField("day", d).Warn("skipping invalid schedule day")
			continue
		}
		out.days = append(out.days, day)
	}
	out.days = lo.Uniq(out.days)
	return out, nil
}

func schedulesFor(trainID uint, days []models.DayOfWeek) []models.TrainSchedule {
	return lo.Map(days, func(d models.DayOfWeek, _ int) models.TrainSchedule {
		return models.TrainSchedule{TrainID: trainID, DayOfWeek: d}
	})
}

func nameTaken(tx *gorm.DB, name string, excludeID uint) (bool, error) {
	q := tx.Model(&models.Train{}).Where("LOWER(train_name) = ?", strings.ToLower(name))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check train name: %w", err)
	}
	return n > 0, nil
}

func (s *TrainService) CreateTrain(ctx context.Context, in TrainInput) (*models.TrainResponse, error) {
	fields, err := checkTrainInput(ctx, &in)
	if err != nil {
		return nil, err
	}

	var trainID uint
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, in.TrainName, 0)
		if err != nil {
			return err
		}
		if taken {
			return conflictf("Train with name %s already exists", in.TrainName)
		}

		train := models.Train{
			TrainName:     in.TrainName,
			Source:        in.Source,
			Destination:   in.Destination,
			DepartureTime: fields.departure,
			ArrivalTime:   fields.arrival,
			Status:        fields.status,
			Schedules:     schedulesFor(0, fields.days),
			FareTypes:     fields.fareTypes,
		}
		if err := tx.Create(&train).Error; err != nil {
			return fmt.Errorf("failed to create train: %w", err)
		}
		trainID = train.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Log(ctx).WithFields(logrus.Fields{"train_id": trainID, "train_name": in.TrainName}).Info("train created")
	return s.GetTrain(ctx, trainID)
}

func withCatalog(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Schedules", func(db *gorm.DB) *gorm.DB { return db.Order("train_schedules.id ASC") }).
		Preload("FareTypes", func(db *gorm.DB) *gorm.DB { return db.Order("fare_types.id ASC") })
}

func toTrainResponses(trains []models.Train) []models.TrainResponse {
	return lo.Map(trains, func(t models.Train, _ int) models.TrainResponse {
		return models.NewTrainResponse(t)
	})
}

func (s *TrainService) GetTrain(ctx context.Context, id uint) (*models.TrainResponse, error) {
	var t models.Train
	if err := withCatalog(s.DB.WithContext(ctx)).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Train", id)
		}
		return nil, fmt.Errorf("failed to retrieve train: %w", err)
	}
	resp := models.NewTrainResponse(t)
	return &resp, nil
}

func (s *TrainService) GetTrainByName(ctx context.Context, name string) (*models.TrainResponse, error) {
	var t models.Train
	err := withCatalog(s.DB.WithContext(ctx)).
		Where("LOWER(train_name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Train", Field: "name", Value: name}
		}
		return nil, fmt.Errorf("failed to retrieve train: %w", err)
	}
	resp := models.NewTrainResponse(t)
	return &resp, nil
}

func (s *TrainService) findTrains(ctx context.Context, scopes ...scope) ([]models.TrainResponse, error) {
	var trains []models.Train
	if err := withCatalog(s.DB.WithContext(ctx)).
		Scopes(scopes...).
		Order("trains.train_name ASC, trains.id ASC").
		Find(&trains).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve trains: %w", err)
	}
	return toTrainResponses(trains), nil
}

func onRoute(source, destination string) scope {
	return where("LOWER(trains.source) = ? AND LOWER(trains.destination) = ?",
		strings.ToLower(strings.TrimSpace(source)), strings.ToLower(strings.TrimSpace(destination)))
}

func runsOn(day models.DayOfWeek) scope {
	return where("EXISTS (SELECT 1 FROM train_schedules WHERE train_schedules.train_id = trains.id AND train_schedules.day_of_week = ?)", day)
}

func hasSeats(db *gorm.DB) *gorm.DB {
	return db.Where("EXISTS (SELECT 1 FROM fare_types WHERE fare_types.train_id = trains.id AND fare_types.seats_available > 0)")
}

func (s *TrainService) ListTrains(ctx context.Context) ([]models.TrainResponse, error) {
	return s.findTrains(ctx)
}

func (s *TrainService) TrainsByStatus(ctx context.Context, status string) ([]models.TrainResponse, error) {
	st, ok := models.ParseTrainStatus(status)
	if !ok {
		return nil, validationf("Invalid train status: %s", status)
	}
	return s.findTrains(ctx, where("trains.status = ?", st))
}

func (s *TrainService) TrainsByRoute(ctx context.Context, source, destination string) ([]models.TrainResponse, error) {
	return s.findTrains(ctx, onRoute(source, destination))
}

func (s *TrainService) TrainsBySource(ctx context.Context, source string) ([]models.TrainResponse, error) {
	return s.findTrains(ctx, where("LOWER(trains.source) = ?", strings.ToLower(strings.TrimSpace(source))))
}

func (s *TrainService) TrainsByDestination(ctx context.Context, destination string) ([]models.TrainResponse, error) {
	return s.findTrains(ctx, where("LOWER(trains.destination) = ?", strings.ToLower(strings.TrimSpace(destination))))
}

func (s *TrainService) SearchTrainsByName(ctx context.Context, q string) ([]models.TrainResponse, error) {
	return s.findTrains(ctx, where("LOWER(trains.train_name) LIKE ?", contains(q)))
}

func (s *TrainService) SearchTrainsBySource(ctx context.Context, q string) ([]models.TrainResponse, error) {
	return s.findTrains(ctx, where("LOWER(trains.source) LIKE ?", contains(q)))
}

func (s *TrainService) SearchTrainsByDestination(ctx context.Context, q string) ([]models.TrainResponse, error) {
	return s.findTrains(ctx, where("LOWER(trains.destination) LIKE ?", contains(q)))
}

// TrainsByScheduleDay returns nothing for an unknown day rather than an error.
func (s *TrainService) TrainsByScheduleDay(ctx context.Context, day string) ([]models.TrainResponse, error) {
	d, ok := models.ParseDayOfWeek(day)
	if !ok {
		return []models.TrainResponse{}, nil
	}
	return s.findTrains(ctx, runsOn(d))
}

func (s *TrainService) TrainsByScheduleDayAndRoute(ctx context.Context, day, source, destination string) ([]models.TrainResponse, error) {
	d, ok := models.ParseDayOfWeek(day)
	if !ok {
		return []models.TrainResponse{}, nil
	}
	return s.findTrains(ctx, runsOn(d), onRoute(source, destination))
}

func (s *TrainService) TrainsWithAvailableSeats(ctx context.Context) ([]models.TrainResponse, error) {
	return s.findTrains(ctx, hasSeats)
}

func (s *TrainService) TrainsWithAvailableSeatsForRoute(ctx context.Context, source, destination string) ([]models.TrainResponse, error) {
	return s.findTrains(ctx, hasSeats, onRoute(source, destination))
}

// AvailableTrainsForDate lists ACTIVE trains on the route that run on the
// date's weekday and still have seats in some class.
func (s *TrainService) AvailableTrainsForDate(ctx context.Context, source, destination, date string) ([]models.TrainResponse, error) {
	d, err := parseDateArg("date", date)
	if err != nil {
		return nil, err
	}
	return s.findTrains(ctx,
		where("trains.status = ?", models.TrainActive),
		onRoute(source, destination),
		runsOn(models.DayOfWeekFor(d)),
		hasSeats,
	)
}

// SearchTrains narrows by the indexed columns in SQL and applies the time
// window in memory.
func (s *TrainService) SearchTrains(ctx context.Context, c TrainSearchCriteria) ([]models.TrainResponse, error) {
	status := models.TrainActive
	if strings.TrimSpace(c.Status) != "" {
		st, ok := models.ParseTrainStatus(c.Status)
		if !ok {
			return nil, validationf("Invalid train status: %s", c.Status)
		}
		status = st
	}

	scopes := []scope{where("trains.status = ?", status)}
	if v := strings.TrimSpace(c.Source); v != "" {
		scopes = append(scopes, where("LOWER(trains.source) = ?", strings.ToLower(v)))
	}
	if v := strings.TrimSpace(c.Destination); v != "" {
		scopes = append(scopes, where("LOWER(trains.destination) = ?", strings.ToLower(v)))
	}
	if v := strings.TrimSpace(c.TrainName); v != "" {
		scopes = append(scopes, where("LOWER(trains.train_name) LIKE ?", contains(v)))
	}
	if v := strings.TrimSpace(c.DayOfWeek); v != "" {
		d, ok := models.ParseDayOfWeek(v)
		if !ok {
			return nil, validationf("Invalid day of week: %s", c.DayOfWeek)
		}
		scopes = append(scopes, runsOn(d))
	}

	var after, before *datatypes.Time
	for _, bound := range []struct {
		raw   string
		field string
		dst   **datatypes.Time
	}{
		{c.DepartureAfter, "departureTimeAfter", &after},
		{c.DepartureBefore, "departureTimeBefore", &before},
	} {
		if strings.TrimSpace(bound.raw) == "" {
			continue
		}
		t, err := parseClock(bound.raw)
		if err != nil {
			return nil, FieldErrors{bound.field: "must be a time in HH:MM or HH:MM:SS format"}
		}
		*bound.dst = &t
	}

	var trains []models.Train
	if err := withCatalog(s.DB.WithContext(ctx)).
		Scopes(scopes...).
		Order("trains.departure_time ASC, trains.id ASC").
		Find(&trains).Error; err != nil {
		return nil, fmt.Errorf("failed to search trains: %w", err)
	}

	trains = lo.Filter(trains, func(t models.Train, _ int) bool {
		if after != nil && t.DepartureTime < *after {
			return false
		}
		if before != nil && t.DepartureTime > *before {
			return false
		}
		return true
	})
	return toTrainResponses(trains), nil
}

// UpdateTrain replaces the train's attributes and schedule. When fare types
// are given they are matched by class: existing classes are updated in place,
// new ones added and missing ones removed.
func (s *TrainService) UpdateTrain(ctx context.Context, id uint, in TrainInput) (*models.TrainResponse, error) {
	fields, err := checkTrainInput(ctx, &in)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		train, found, err := findByID[models.Train](tx, id)
		if err != nil {
			return fmt.Errorf("failed to load train: %w", err)
		}
		if !found {
			return notFound("Train", id)
		}

		taken, err := nameTaken(tx, in.TrainName, id)
		if err != nil {
			return err
		}
		if taken {
			return conflictf("Train with name %s already exists", in.TrainName)
		}

		if err := tx.Model(&train).Updates(map[string]any{
			"train_name":     in.TrainName,
			"source":         in.Source,
			"destination":    in.Destination,
			"departure_time": fields.departure,
			"arrival_time":   fields.arrival,
			"status":         fields.status,
		}).Error; err != nil {
			return fmt.Errorf("failed to update train: %w", err)
		}

		if err := tx.Where("train_id = ?", id).Delete(&models.TrainSchedule{}).Error; err != nil {
			return fmt.Errorf("failed to replace schedule: %w", err)
		}
		if len(fields.days) > 0 {
			if err := tx.Create(schedulesFor(id, fields.days)).Error; err != nil {
				return fmt.Errorf("failed to replace schedule: %w", err)
			}
		}

		if in.FareTypes != nil {
			return replaceFareTypes(tx, id, fields.fareTypes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Log(ctx).WithField("train_id", id).Info("train updated")
	return s.GetTrain(ctx, id)
}

func replaceFareTypes(tx *gorm.DB, trainID uint, wanted []models.FareType) error {
	var current []models.FareType
	if err := tx.Where("train_id = ?", trainID).Find(&current).Error; err != nil {
		return fmt.Errorf("failed to load fare types: %w", err)
	}
	byClass := lo.KeyBy(current, func(f models.FareType) models.ClassType { return f.ClassType })

	for _, w := range wanted {
		if existing, ok := byClass[w.ClassType]; ok {
			if err := tx.Model(&existing).Updates(map[string]any{
				"price":           w.Price,
				"seats_available": w.SeatsAvailable,
			}).Error; err != nil {
				return fmt.Errorf("failed to update fare type: %w", err)
			}
			delete(byClass, w.ClassType)
			continue
		}
		w.TrainID = trainID
		if err := tx.Create(&w).Error; err != nil {
			return fmt.Errorf("failed to create fare type: %w", err)
		}
	}

	for _, stale := range byClass {
		if err := deleteFareTypeTx(tx, stale.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *TrainService) UpdateTrainStatus(ctx context.Context, id uint, status string) (*models.TrainResponse, error) {
	st, ok := models.ParseTrainStatus(status)
	if !ok {
		return nil, validationf("Invalid train status: %s", status)
	}
	res := s.DB.WithContext(ctx).Model(&models.Train{}).Where("id = ?", id).Update("status", st)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update train status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("Train", id)
	}
	utils.Log(ctx).WithFields(logrus.Fields{"train_id": id, "status": st}).Info("train status updated")
	return s.GetTrain(ctx, id)
}

// DeleteTrain removes a train with its schedule and fare types. Trains that
// bookings refer to cannot be deleted; set them INACTIVE instead.
func (s *TrainService) DeleteTrain(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, found, err := findByID[models.Train](tx, id); err != nil {
			return fmt.Errorf("failed to load train: %w", err)
		} else if !found {
			return notFound("Train", id)
		}

		var refs int64
		if err := tx.Model(&models.Booking{}).Where("train_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to check bookings: %w", err)
		}
		if refs > 0 {
			return validationf("Cannot delete train with existing bookings")
		}

		if err := tx.Where("train_id = ?", id).Delete(&models.TrainSchedule{}).Error; err != nil {
			return fmt.Errorf("failed to delete schedule: %w", err)
		}
		if err := tx.Where("train_id = ?", id).Delete(&models.FareType{}).Error; err != nil {
			return fmt.Errorf("failed to delete fare types: %w", err)
		}
		if err := tx.Delete(&models.Train{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete train: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.Log(ctx).WithField("train_id", id).Info("train deleted")
	return nil
}

func (s *TrainService) ExistsByTrainName(ctx context.Context, name string) (bool, error) {
	return nameTaken(s.DB.WithContext(ctx), strings.TrimSpace(name), 0)
}

func (s *TrainService) ExistsByRoute(ctx context.Context, source, destination string) (bool, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Train{}).Scopes(onRoute(source, destination)).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check route: %w", err)
	}
	return n > 0, nil
}

func (s *TrainService) Stations(ctx context.Context) (*models.StationList, error) {
	db := s.DB.WithContext(ctx)
	out := &models.StationList{SourceStations: []string{}, DestinationStations: []string{}}
	if err := db.Model(&models.Train{}).Distinct().Pluck("source", &out.SourceStations).Error; err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	if err := db.Model(&models.Train{}).Distinct().Pluck("destination", &out.DestinationStations).Error; err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	sort.Strings(out.SourceStations)
	sort.Strings(out.DestinationStations)
	return out, nil
}

func (s *TrainService) ListFareTypes(ctx context.Context, trainID uint) ([]models.FareTypeResponse, error) {
	db := s.DB.WithContext(ctx)
	if _, found, err := findByID[models.Train](db, trainID); err != nil {
		return nil, fmt.Errorf("failed to load train: %w", err)
	} else if !found {
		return nil, notFound("Train", trainID)
	}

	var fares []models.FareType
	if err := db.Where("train_id = ?", trainID).Order("id ASC").Find(&fares).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve fare types: %w", err)
	}
	return lo.Map(fares, func(f models.FareType, _ int) models.FareTypeResponse {
		return models.NewFareTypeResponse(f)
	}), nil
}

func (s *TrainService) GetFareType(ctx context.Context, id uint) (*models.FareTypeResponse, error) {
	f, found, err := findByID[models.FareType](s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve fare type: %w", err)
	}
	if !found {
		return nil, notFound("FareType", id)
	}
	resp := models.NewFareTypeResponse(f)
	return &resp, nil
}

func checkFareTypeInput(in FareTypeInput) (models.FareType, error) {
	extra := FieldErrors{}
	ct, ok := models.ParseClassType(in.ClassType)
	if !ok && strings.TrimSpace(in.ClassType) != "" {
		extra["classType"] = "is not a known class type"
	}
	checkMoney(extra, "price", in.Price)
	if err := mergeFieldErrors(validateStruct(in), extra); err != nil {
		return models.FareType{}, err
	}
	return models.FareType{ClassType: ct, Price: in.Price.Round(2), SeatsAvailable: in.SeatsAvailable}, nil
}

func (s *TrainService) AddFareType(ctx context.Context, trainID uint, in FareTypeInput) (*models.FareTypeResponse, error) {
	fare, err := checkFareTypeInput(in)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, found, err := findByID[models.Train](tx, trainID); err != nil {
			return fmt.Errorf("failed to load train: %w", err)
		} else if !found {
			return notFound("Train", trainID)
		}

		var dup int64
		if err := tx.Model(&models.FareType{}).Where("train_id = ? AND class_type = ?", trainID, fare.ClassType).Count(&dup).Error; err != nil {
			return fmt.Errorf("failed to check fare types: %w", err)
		}
		if dup > 0 {
			return conflictf("Train %d already has a %s fare type", trainID, fare.ClassType)
		}

		fare.TrainID = trainID
		if err := tx.Create(&fare).Error; err != nil {
			return fmt.Errorf("failed to create fare type: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := models.NewFareTypeResponse(fare)
	return &resp, nil
}

// UpdateFareType sets price, class and the seat counter outright.
func (s *TrainService) UpdateFareType(ctx context.Context, id uint, in FareTypeInput) (*models.FareTypeResponse, error) {
	fare, err := checkFareTypeInput(in)
	if err != nil {
		return nil, err
	}

	var updated models.FareType
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, found, err := findByID[models.FareType](tx, id)
		if err != nil {
			return fmt.Errorf("failed to load fare type: %w", err)
		}
		if !found {
			return notFound("FareType", id)
		}

		if fare.ClassType != current.ClassType {
			var dup int64
			if err := tx.Model(&models.FareType{}).
				Where("train_id = ? AND class_type = ? AND id <> ?", current.TrainID, fare.ClassType, id).
				Count(&dup).Error; err != nil {
				return fmt.Errorf("failed to check fare types: %w", err)
			}
			if dup > 0 {
				return conflictf("Train %d already has a %s fare type", current.TrainID, fare.ClassType)
			}
		}

		if err := tx.Model(&current).Updates(map[string]any{
			"class_type":      fare.ClassType,
			"price":           fare.Price,
			"seats_available": fare.SeatsAvailable,
		}).Error; err != nil {
			return fmt.Errorf("failed to update fare type: %w", err)
		}
		updated = current
		updated.ClassType = fare.ClassType
		updated.Price = fare.Price
		updated.SeatsAvailable = fare.SeatsAvailable
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := models.NewFareTypeResponse(updated)
	return &resp, nil
}

func deleteFareTypeTx(tx *gorm.DB, id uint) error {
	var refs int64
	if err := tx.Model(&models.Booking{}).Where("fare_type_id = ?", id).Count(&refs).Error; err != nil {
		return fmt.Errorf("failed to check bookings: %w", err)
	}
	if refs > 0 {
		return validationf("Cannot delete fare type with existing bookings")
	}
	if err := tx.Delete(&models.FareType{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete fare type: %w", err)
	}
	return nil
}

func (s *TrainService) DeleteFareType(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, found, err := findByID[models.FareType](tx, id); err != nil {
			return fmt.Errorf("failed to load fare type: %w", err)
		} else if !found {
			return notFound("FareType", id)
		}
		return deleteFareTypeTx(tx, id)
	})
}
