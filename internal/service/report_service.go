package service

import (
	"time"

	"trashbeta-service/internal/cache"
	"trashbeta-service/internal/messaging"
	"trashbeta-service/internal/model"
	"trashbeta-service/internal/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReportStore is the durable source of truth for reports.
type ReportStore interface {
	Create(report *model.Report) error
	ExistsTrackingID(trackingID string) (bool, error)
	FindByID(id uuid.UUID) (*model.Report, error)
	FindByTrackingID(trackingID string) (*model.Report, error)
	FindByCreator(creatorID uuid.UUID) ([]model.Report, error)
	FindByAssignee(assigneeID uuid.UUID) ([]model.Report, error)
	FindAll(filter model.ListFilter) ([]model.Report, int, error)
	Assign(id uuid.UUID, assigneeID uuid.UUID, priority *model.Priority) error
	UpdateStatus(id uuid.UUID, status model.ReportStatus) error
	Delete(id uuid.UUID) error
	Stats(now time.Time) (*model.ReportStats, error)
}

// ActorStore reads users owned by the auth service.
type ActorStore interface {
	FindByID(id uuid.UUID) (*model.User, error)
	FindByEmailAndRole(email string, role model.Role) (*model.User, error)
}

// Notifier enqueues a delivery and returns immediately; it never
// reports errors back to the lifecycle operation.
type Notifier interface {
	Notify(user *model.User, template notification.Template, preference model.NotificationPreference)
}

// EventOutbox records lifecycle events for the integration feed.
type EventOutbox interface {
	Enqueue(routingKey string, payload interface{}) error
}

// ReportService owns the report lifecycle: authorization and
// transition checks happen here before any mutation, and everything
// after the store write (cache invalidation, notification, event
// publishing) is best-effort.
type ReportService struct {
	reports  ReportStore
	users    ActorStore
	cache    cache.Store
	notifier Notifier
	outbox   EventOutbox
	ttl      time.Duration
	now      func() time.Time
}

func NewReportService(reports ReportStore, users ActorStore, cacheStore cache.Store, notifier Notifier, outbox EventOutbox, ttl time.Duration) *ReportService {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &ReportService{
		reports:  reports,
		users:    users,
		cache:    cacheStore,
		notifier: notifier,
		outbox:   outbox,
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetActor resolves the authenticated caller from its id header.
func (s *ReportService) GetActor(id string) (*model.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, validationf("invalid user id")
	}

	user, err := s.users.FindByID(uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Message: "user not found"}
	}
	return user, nil
}

// Create validates the submission, allocates a tracking id, snapshots
// the reporter's contact details and persists the report with
// status=PENDING and priority=LOW.
func (s *ReportService) Create(actor *model.User, req *model.CreateReportRequest) (*model.Report, error) {
	if req.Category == "" || req.State == "" || req.LGA == "" || req.Address == "" {
		return nil, validationf("missing required fields")
	}
	if !req.Category.Valid() {
		return nil, validationf("allowed categories are %v", model.AllowedCategories)
	}
	if len(req.Description) > model.MaxDescriptionLength {
		return nil, validationf("description must be at most %d characters", model.MaxDescriptionLength)
	}

	preference := req.NotificationPreference
	if preference == "" {
		preference = model.PreferEmail
	} else if !preference.Valid() {
		return nil, validationf("allowed notification preferences are EMAIL, SMS and BOTH")
	}

	trackingID, err := s.newTrackingID()
	if err != nil {
		return nil, err
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}

	contact := model.ContactDetails{
		Name:  actor.Name,
		Email: actor.Email,
	}
	if actor.Phone != nil {
		contact.Phone = *actor.Phone
	}

	now := s.now()
	report := &model.Report{
		ID:                     uuid.New(),
		TrackingID:             trackingID,
		Category:               req.Category,
		State:                  req.State,
		LGA:                    req.LGA,
		Address:                req.Address,
		Description:            req.Description,
		Images:                 images,
		ContactDetails:         contact,
		Priority:               model.PriorityLow,
		Status:                 model.StatusPending,
		CreatedBy:              actor.ID,
		NotificationPreference: preference,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.reports.Create(report); err != nil {
		return nil, err
	}

	s.notifier.Notify(actor, notification.ReportCreated(report.TrackingID), report.NotificationPreference)
	s.publishEvent(messaging.RoutingKeyReportCreated, report, actor)

	cache.Invalidate(s.cache, cache.UserReportsKey(actor.ID))
	cache.InvalidatePattern(s.cache, cache.AllReportsPrefix)

	return report, nil
}

// Assign gives the report to a staff member and flips it to ASSIGNED.
// A report that already has an assignee is left untouched and the
// current assignee is reported back informationally.
func (s *ReportService) Assign(actor *model.User, id uuid.UUID, req *model.AssignRequest) (*model.AssignResult, error) {
	if actor.Role != model.RoleAdmin {
		return nil, &AuthorizationError{Message: "admin access required"}
	}

	var priority *model.Priority
	if req.Priority != "" {
		if !req.Priority.Valid() {
			return nil, validationf("allowed priorities are %v", model.AllowedPriorities)
		}
		p := req.Priority
		priority = &p
	}

	report, err := s.reports.FindByID(id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, &NotFoundError{Message: "report not found"}
	}

	if report.AssignedTo != nil {
		assigneeEmail := "a user"
		if current, err := s.users.FindByID(*report.AssignedTo); err == nil && current != nil {
			assigneeEmail = current.Email
		}
		return &model.AssignResult{
			Report:          report,
			AlreadyAssigned: true,
			AssigneeEmail:   assigneeEmail,
		}, nil
	}

	if req.Email == "" {
		return nil, validationf("email is required for assignment")
	}

	assignee, err := s.users.FindByEmailAndRole(req.Email, model.RoleStaff)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, &NotFoundError{Message: "assigned user not found"}
	}

	if err := s.reports.Assign(report.ID, assignee.ID, priority); err != nil {
		return nil, err
	}

	report.AssignedTo = &assignee.ID
	report.Status = model.StatusAssigned
	if priority != nil {
		report.Priority = *priority
	}
	report.UpdatedAt = s.now()

	s.notifier.Notify(assignee, notification.ReportAssigned(report.TrackingID), report.NotificationPreference)
	s.publishEvent(messaging.RoutingKeyReportAssigned, report, actor)
	s.invalidateReport(report)

	return &model.AssignResult{
		Report:        report,
		AssigneeEmail: assignee.Email,
	}, nil
}

// UpdateStatus moves a report to any status in the enum. Callable by
// an admin or the current assignee; a COMPLETED transition notifies
// the original creator.
func (s *ReportService) UpdateStatus(actor *model.User, id uuid.UUID, status model.ReportStatus) (*model.Report, error) {
	if !status.Valid() {
		return nil, validationf("allowed statuses are %v", model.AllowedStatuses)
	}

	report, err := s.reports.FindByID(id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, &NotFoundError{Message: "report not found"}
	}

	if !canUpdateStatus(actor, report) {
		return nil, &AuthorizationError{Message: "must be an admin or the report assignee"}
	}

	if err := s.reports.UpdateStatus(report.ID, status); err != nil {
		return nil, err
	}

	report.Status = status
	report.UpdatedAt = s.now()

	if status == model.StatusCompleted {
		s.notifyCreator(report)
	}

	s.publishEvent(messaging.RoutingKeyStatusUpdated, report, actor)
	s.invalidateReport(report)

	return report, nil
}

// MarkComplete is the stricter completion path: only the literal
// assignee may call it, admins included. It does not notify the
// creator; only the UpdateStatus path does.
func (s *ReportService) MarkComplete(actor *model.User, id uuid.UUID) (*model.Report, error) {
	report, err := s.reports.FindByID(id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, &NotFoundError{Message: "report not found"}
	}

	if report.AssignedTo == nil || *report.AssignedTo != actor.ID {
		return nil, &AuthorizationError{Message: "not your task"}
	}

	if err := s.reports.UpdateStatus(report.ID, model.StatusCompleted); err != nil {
		return nil, err
	}

	report.Status = model.StatusCompleted
	report.UpdatedAt = s.now()

	s.publishEvent(messaging.RoutingKeyStatusUpdated, report, actor)
	s.invalidateReport(report)

	return report, nil
}

// Delete hard-deletes a report and purges its cache entries.
func (s *ReportService) Delete(actor *model.User, id uuid.UUID) error {
	if actor.Role != model.RoleAdmin {
		return &AuthorizationError{Message: "admin access required"}
	}

	report, err := s.reports.FindByID(id)
	if err != nil {
		return err
	}
	if report == nil {
		return &NotFoundError{Message: "report not found"}
	}

	if err := s.reports.Delete(report.ID); err != nil {
		return err
	}

	s.publishEvent(messaging.RoutingKeyReportDeleted, report, actor)
	s.invalidateReport(report)

	return nil
}

func (s *ReportService) GetByID(id uuid.UUID) (*model.Report, error) {
	return cache.GetOrLoad(s.cache, cache.ReportKey(id), s.ttl, func() (*model.Report, error) {
		report, err := s.reports.FindByID(id)
		if err != nil {
			return nil, err
		}
		if report == nil {
			return nil, &NotFoundError{Message: "report not found"}
		}
		return report, nil
	})
}

func (s *ReportService) GetByTrackingID(trackingID string) (*model.Report, error) {
	if trackingID == "" {
		return nil, validationf("tracking id is required")
	}

	return cache.GetOrLoad(s.cache, cache.TrackingKey(trackingID), s.ttl, func() (*model.Report, error) {
		report, err := s.reports.FindByTrackingID(trackingID)
		if err != nil {
			return nil, err
		}
		if report == nil {
			return nil, &NotFoundError{Message: "report not found"}
		}
		return report, nil
	})
}

func (s *ReportService) ListForUser(userID uuid.UUID) ([]model.Report, error) {
	return cache.GetOrLoad(s.cache, cache.UserReportsKey(userID), s.ttl, func() ([]model.Report, error) {
		reports, err := s.reports.FindByCreator(userID)
		if err != nil {
			return nil, err
		}
		if reports == nil {
			reports = []model.Report{}
		}
		return reports, nil
	})
}

func (s *ReportService) ListAll(filter model.ListFilter) (*model.ReportListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	return cache.GetOrLoad(s.cache, cache.AllReportsKey(filter), s.ttl, func() (*model.ReportListResponse, error) {
		reports, total, err := s.reports.FindAll(filter)
		if err != nil {
			return nil, err
		}
		if reports == nil {
			reports = []model.Report{}
		}

		totalPages := (total + filter.Limit - 1) / filter.Limit
		return &model.ReportListResponse{
			Reports:      reports,
			CurrentPage:  filter.Page,
			TotalReports: total,
			TotalPages:   totalPages,
			HasNextPage:  filter.Page < totalPages,
			HasPrevPage:  filter.Page > 1,
		}, nil
	})
}

// ListAssigned returns the caller's open workload, always fresh from
// the store.
func (s *ReportService) ListAssigned(actor *model.User) ([]model.Report, error) {
	reports, err := s.reports.FindByAssignee(actor.ID)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []model.Report{}
	}
	return reports, nil
}

func (s *ReportService) Stats(actor *model.User) (*model.ReportStats, error) {
	if actor.Role != model.RoleAdmin {
		return nil, &AuthorizationError{Message: "admin access required"}
	}
	return s.reports.Stats(s.now())
}

func canUpdateStatus(actor *model.User, report *model.Report) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleStaff, model.RoleResident:
		return report.AssignedTo != nil && *report.AssignedTo == actor.ID
	}
	return false
}

func (s *ReportService) notifyCreator(report *model.Report) {
	creator, err := s.users.FindByID(report.CreatedBy)
	if err != nil || creator == nil {
		logrus.Warnf("reports: creator %s not found for notification", report.CreatedBy)
		return
	}
	s.notifier.Notify(creator, notification.ReportCompleted(report.TrackingID), report.NotificationPreference)
}

func (s *ReportService) publishEvent(routingKey string, report *model.Report, actor *model.User) {
	if s.outbox == nil {
		return
	}

	event := messaging.ReportEvent{
		ReportID:   report.ID.String(),
		TrackingID: report.TrackingID,
		Category:   string(report.Category),
		Status:     string(report.Status),
		Priority:   string(report.Priority),
		ActorID:    actor.ID.String(),
		Timestamp:  s.now().Unix(),
	}
	if err := s.outbox.Enqueue(routingKey, event); err != nil {
		logrus.Warnf("events: enqueue %s for %s: %v", routingKey, report.TrackingID, err)
	}
}

// invalidateReport drops both single-report keys, the owner's list key
// and the whole paginated list family. Broad deletes over recomputation.
func (s *ReportService) invalidateReport(report *model.Report) {
	cache.Invalidate(s.cache,
		cache.ReportKey(report.ID),
		cache.TrackingKey(report.TrackingID),
		cache.UserReportsKey(report.CreatedBy),
	)
	cache.InvalidatePattern(s.cache, cache.AllReportsPrefix)
}
