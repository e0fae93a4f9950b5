package web

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/middleware"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/listutil"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/orchestrators"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/projections"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/audit"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/event"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/post"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

func canEdit(r *http.Request) bool {
	return middleware.FromContext(r.Context()).Can(account.PermissionEdit)
}

// --- groups ---

type groupsPage struct {
	Groups  []group.Group
	Counts  map[int64]int // active leiding per group
	CanEdit bool
}

// handleGroupsPage handles GET /groups
func (s *Server) handleGroupsPage(w http.ResponseWriter, r *http.Request) {
	groups, err := s.Stores.Groups.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	staff, err := s.Stores.Leiding.ListActive(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	counts := make(map[int64]int, len(groups))
	for _, l := range staff {
		if l.HasGroup() {
			counts[*l.GroupID]++
		}
	}
	s.render(w, r, http.StatusOK, "groups.html", page{
		Title: "Groepen",
		Nav:   "groups",
		Data:  groupsPage{Groups: groups, Counts: counts, CanEdit: canEdit(r)},
	})
}

type groupForm struct {
	Name        string `form:"name" validate:"required,max=60"`
	Description string `form:"description" validate:"max=2000"`
	Color       string `form:"color" validate:"omitempty,oneof=red orange yellow green blue purple grey"`
}

func readGroupForm(r *http.Request) groupForm {
	return groupForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Color:       r.FormValue("color"),
	}
}

func (s *Server) groupDeps() orchestrators.GroupDeps {
	return orchestrators.GroupDeps{GroupStore: s.Stores.Groups}
}

// handleCreateGroup handles POST /groups
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	form := readGroupForm(r)
	if err := s.validate.Struct(form); err != nil {
		s.fail(w, r, err, "/groups")
		return
	}
	id, err := orchestrators.ExecuteCreateGroup(r.Context(), orchestrators.GroupInput(form), s.groupDeps())
	if err != nil {
		s.fail(w, r, err, "/groups")
		return
	}
	s.record(r, audit.CategoryGroup, audit.ActionCreate, "group", strconv.FormatInt(id, 10), form.Name)
	redirect(w, r, "/groups", "notice", "Groep "+form.Name+" aangemaakt.")
}

// handleUpdateGroup handles POST /groups/{id}
func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "/groups")
		return
	}
	form := readGroupForm(r)
	if err := s.validate.Struct(form); err != nil {
		s.fail(w, r, err, "/groups")
		return
	}
	if _, err := orchestrators.ExecuteUpdateGroup(r.Context(), id, orchestrators.GroupInput(form), s.groupDeps()); err != nil {
		s.fail(w, r, err, "/groups")
		return
	}
	s.record(r, audit.CategoryGroup, audit.ActionUpdate, "group", strconv.FormatInt(id, 10), form.Name)
	redirect(w, r, "/groups", "notice", "Groep bijgewerkt.")
}

// handleDeactivateGroup handles POST /groups/{id}/deactivate
func (s *Server) handleDeactivateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "/groups")
		return
	}
	if err := orchestrators.ExecuteDeactivateGroup(r.Context(), id, s.groupDeps()); err != nil {
		s.fail(w, r, err, "/groups")
		return
	}
	s.record(r, audit.CategoryGroup, audit.ActionDisable, "group", strconv.FormatInt(id, 10), "")
	redirect(w, r, "/groups", "notice", "Groep gedeactiveerd.")
}

// handleActivateGroup handles POST /groups/{id}/activate
func (s *Server) handleActivateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "/groups")
		return
	}
	if err := orchestrators.ExecuteActivateGroup(r.Context(), id, s.groupDeps()); err != nil {
		s.fail(w, r, err, "/groups")
		return
	}
	s.record(r, audit.CategoryGroup, audit.ActionEnable, "group", strconv.FormatInt(id, 10), "")
	redirect(w, r, "/groups", "notice", "Groep opnieuw actief.")
}

// --- events ---

type eventsPage struct {
	View    projections.GetEventsResult
	GroupID int64
	All     bool
	CanEdit bool
}

func (s *Server) eventsQuery(r *http.Request) (projections.GetEventsQuery, bool, error) {
	q := r.URL.Query()
	var query projections.GetEventsQuery
	if v := q.Get("group"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return query, false, badInput("ongeldige groep %q", v)
		}
		query.GroupID = id
	}
	all := q.Get("all") == "1"
	if !all {
		query.UpcomingFrom = s.Now().UTC().Truncate(24 * time.Hour)
	}
	return query, all, nil
}

// handleEventsPage handles GET /events. Upcoming events by default, ?all=1 for history.
func (s *Server) handleEventsPage(w http.ResponseWriter, r *http.Request) {
	query, all, err := s.eventsQuery(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	view, err := projections.QueryGetEvents(r.Context(), query, projections.GetEventsDeps{
		EventStore: s.Stores.Events,
		GroupStore: s.Stores.Groups,
	})
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "events.html", page{
		Title: "Kalender",
		Nav:   "events",
		Data:  eventsPage{View: view, GroupID: query.GroupID, All: all, CanEdit: canEdit(r)},
	})
}

type eventPage struct {
	Event   event.Event
	Groups  []group.Group
	CanEdit bool
}

// handleEventPage handles GET /events/{id}
func (s *Server) handleEventPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	e, err := s.Stores.Events.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	groups, err := s.Stores.Groups.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "event_edit.html", page{
		Title: e.Title,
		Nav:   "events",
		Data:  eventPage{Event: e, Groups: groups, CanEdit: canEdit(r)},
	})
}

type eventForm struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"max=4000"`
	Location    string `form:"location" validate:"max=200"`
	StartTime   string `form:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime     string `form:"end_time" validate:"omitempty,datetime=15:04"`
}

func (s *Server) readEventForm(r *http.Request) (orchestrators.EventInput, error) {
	form := eventForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Location:    strings.TrimSpace(r.FormValue("location")),
		StartTime:   strings.TrimSpace(r.FormValue("start_time")),
		EndTime:     strings.TrimSpace(r.FormValue("end_time")),
	}
	if err := s.validate.Struct(form); err != nil {
		return orchestrators.EventInput{}, err
	}
	start, err := formDate(r, "start_date")
	if err != nil {
		return orchestrators.EventInput{}, err
	}
	end, err := formDate(r, "end_date")
	if err != nil {
		return orchestrators.EventInput{}, err
	}
	if err := r.ParseForm(); err != nil {
		return orchestrators.EventInput{}, badInput("ongeldig formulier")
	}
	groupIDs, err := formIDs(r.Form["group_ids"])
	if err != nil {
		return orchestrators.EventInput{}, err
	}
	return orchestrators.EventInput{
		Title:       form.Title,
		Description: form.Description,
		Location:    form.Location,
		StartDate:   start,
		EndDate:     end,
		StartTime:   form.StartTime,
		EndTime:     form.EndTime,
		GroupIDs:    groupIDs,
	}, nil
}

func (s *Server) eventDeps() orchestrators.EventDeps {
	return orchestrators.EventDeps{EventStore: s.Stores.Events, Groups: s.Stores.Groups}
}

// handleCreateEvent handles POST /events
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	in, err := s.readEventForm(r)
	if err != nil {
		s.fail(w, r, err, "/events")
		return
	}
	id, err := orchestrators.ExecuteCreateEvent(r.Context(), in, s.eventDeps())
	if err != nil {
		s.fail(w, r, err, "/events")
		return
	}
	s.record(r, audit.CategoryContent, audit.ActionCreate, "event", strconv.FormatInt(id, 10), in.Title)
	redirect(w, r, "/events/"+strconv.FormatInt(id, 10), "notice", "Activiteit aangemaakt.")
}

// handleUpdateEvent handles POST /events/{id}
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "/events")
		return
	}
	back := "/events/" + strconv.FormatInt(id, 10)
	in, err := s.readEventForm(r)
	if err != nil {
		s.fail(w, r, err, back)
		return
	}
	if _, err := orchestrators.ExecuteUpdateEvent(r.Context(), id, in, s.eventDeps()); err != nil {
		s.fail(w, r, err, back)
		return
	}
	redirect(w, r, back, "notice", "Activiteit bijgewerkt.")
}

// handleDeleteEvent handles POST /events/{id}/delete
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "/events")
		return
	}
	if err := orchestrators.ExecuteDeleteEvent(r.Context(), id, s.eventDeps()); err != nil {
		s.fail(w, r, err, "/events")
		return
	}
	s.record(r, audit.CategoryContent, audit.ActionDelete, "event", strconv.FormatInt(id, 10), "")
	redirect(w, r, "/events", "notice", "Activiteit verwijderd.")
}

// handleEventsFeed handles GET /api/events.ics, the public calendar feed.
// It disappears when the show_calendar setting is off. ?group=ID narrows it.
func (s *Server) handleEventsFeed(w http.ResponseWriter, r *http.Request) {
	if s.Stores.Settings != nil {
		st, err := s.Stores.Settings.Get(r.Context(), setting.KeyShowCalendar)
		if err != nil {
			s.fail(w, r, err, "")
			return
		}
		if on, err := st.Bool(); err == nil && !on {
			s.handleNotFound(w, r)
			return
		}
	}

	query, _, err := s.eventsQuery(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	query.UpcomingFrom = time.Time{}
	view, err := projections.QueryGetEvents(r.Context(), query, projections.GetEventsDeps{
		EventStore: s.Stores.Events,
		GroupStore: s.Stores.Groups,
	})
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	var buf bytes.Buffer
	if err := s.calendar.Write(&buf, view.Plain()); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="ksa-petegem.ics"`)
	_, _ = buf.WriteTo(w)
}

// --- posts ---

type postsPage struct {
	View           projections.GetPostsResult
	PerPageOptions []int
	CanEdit        bool
}

// handlePostsPage handles GET /posts
func (s *Server) handlePostsPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetPosts(r.Context(), listutil.ParsePageParams(r.URL.Query()), false, s.Stores.Posts)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "posts.html", page{
		Title: "Berichten",
		Nav:   "posts",
		Data:  postsPage{View: res, PerPageOptions: listutil.PerPageOptions, CanEdit: canEdit(r)},
	})
}

type postPage struct {
	Post    post.Post
	CanEdit bool
}

// handlePostPage handles GET /posts/{id}
func (s *Server) handlePostPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	p, err := s.Stores.Posts.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "post_edit.html", page{
		Title: p.Title,
		Nav:   "posts",
		Data:  postPage{Post: p, CanEdit: canEdit(r)},
	})
}

type postForm struct {
	Title string `form:"title" validate:"required,max=200"`
	Body  string `form:"body" validate:"required,max=50000"`
}

func (s *Server) readPostForm(r *http.Request) (orchestrators.PostInput, error) {
	form := postForm{
		Title: strings.TrimSpace(r.FormValue("title")),
		Body:  strings.TrimSpace(r.FormValue("body")),
	}
	if err := s.validate.Struct(form); err != nil {
		return orchestrators.PostInput{}, err
	}
	return orchestrators.PostInput{Title: form.Title, Body: form.Body, Published: formBool(r, "published")}, nil
}

func (s *Server) postDeps() orchestrators.PostDeps {
	return orchestrators.PostDeps{PostStore: s.Stores.Posts, Objects: s.Objects, GenerateID: s.NewID, Now: s.Now}
}

// handleCreatePost handles POST /posts
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	in, err := s.readPostForm(r)
	if err != nil {
		s.fail(w, r, err, "/posts")
		return
	}
	sess := middleware.FromContext(r.Context()).Session
	id, err := orchestrators.ExecuteCreatePost(r.Context(), orchestrators.CreatePostInput{
		PostInput:  in,
		AuthorID:   sess.AccountID,
		AuthorName: sess.Name,
	}, s.postDeps())
	if err != nil {
		s.fail(w, r, err, "/posts")
		return
	}
	s.record(r, audit.CategoryContent, audit.ActionCreate, "post", strconv.FormatInt(id, 10), in.Title)
	redirect(w, r, "/posts/"+strconv.FormatInt(id, 10), "notice", "Bericht aangemaakt.")
}

// handleUpdatePost handles POST /posts/{id}
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "/posts")
		return
	}
	back := "/posts/" + strconv.FormatInt(id, 10)
	in, err := s.readPostForm(r)
	if err != nil {
		s.fail(w, r, err, back)
		return
	}
	if _, err := orchestrators.ExecuteUpdatePost(r.Context(), id, in, s.postDeps()); err != nil {
		s.fail(w, r, err, back)
		return
	}
	redirect(w, r, back, "notice", "Bericht bijgewerkt.")
}

// handleUploadCover handles POST /posts/{id}/cover (multipart, field "cover").
func (s *Server) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "/posts")
		return
	}
	back := "/posts/" + strconv.FormatInt(id, 10)

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("cover")
	if err != nil {
		s.fail(w, r, badInput("kies een afbeelding van maximaal 10 MB"), back)
		return
	}
	defer file.Close()

	if _, err := orchestrators.ExecuteUploadPostCover(r.Context(), id, file, s.postDeps()); err != nil {
		s.fail(w, r, err, back)
		return
	}
	redirect(w, r, back, "notice", "Omslagfoto bijgewerkt.")
}

// handleDeletePost handles POST /posts/{id}/delete
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "/posts")
		return
	}
	if err := orchestrators.ExecuteDeletePost(r.Context(), id, s.postDeps()); err != nil {
		s.fail(w, r, err, "/posts")
		return
	}
	s.record(r, audit.CategoryContent, audit.ActionDelete, "post", strconv.FormatInt(id, 10), "")
	redirect(w, r, "/posts", "notice", "Bericht verwijderd.")
}
