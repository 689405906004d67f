package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/services"
	"github.com/desertthunder/mvx/internal/session"
	"github.com/desertthunder/mvx/internal/shared"
)

const (
	defaultPageSize = 10
	maxCast         = 8
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PopularView ViewState = iota
	SearchView
	FavoritesView
	DetailView
	LoginView
)

func (v ViewState) String() string {
	switch v {
	case PopularView:
		return "Popular"
	case SearchView:
		return "Search"
	case FavoritesView:
		return "Favorites"
	case DetailView:
		return "Movie"
	case LoginView:
		return "Login"
	default:
		return ""
	}
}

// Session is the part of [session.Manager] the TUI depends on.
type Session interface {
	Snapshot() session.Snapshot
	Login(ctx context.Context, email, password string) error
	Logout() error
	Subscribe(fn func(session.Snapshot)) (cancel func())
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	catalog  services.CatalogService
	session  Session
	logger   *log.Logger
	pageSize int

	view        ViewState
	prev        ViewState // list view a detail returns to
	beforeLogin ViewState
	afterLogin  ViewState

	snap         session.Snapshot
	sessionCh    chan session.Snapshot
	cancelSub    func()
	expectLogout bool

	width  int
	height int

	movies      list.Model
	listing     formatter.ListView
	popularPage int
	searchPage  int
	favPage     int
	query       string

	movieID int64
	movie   *models.Movie
	credits *models.Credits

	search   textinput.Model
	email    textinput.Model
	password textinput.Model

	loading  bool
	inFlight bool
	status   string
	err      error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model and subscribes it to sess. Call [Model.Close] when the program exits.
func NewModel(ctx context.Context, catalog services.CatalogService, sess Session, pageSize int, logger *log.Logger) *Model {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	search := textinput.New()
	search.Placeholder = "title"
	search.Prompt = "Search: "
	search.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "user@movie.com"
	email.Prompt = "Email:    "

	password := textinput.New()
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	m := &Model{
		ctx:         ctx,
		catalog:     catalog,
		session:     sess,
		logger:      logger,
		pageSize:    pageSize,
		view:        PopularView,
		snap:        sess.Snapshot(),
		sessionCh:   make(chan session.Snapshot, 1),
		movies:      newMovieList(),
		popularPage: 1,
		searchPage:  1,
		search:      search,
		email:       email,
		password:    password,
		help:        help.New(),
		keys:        newKeyMap(),
	}

	ch := m.sessionCh
	m.cancelSub = sess.Subscribe(func(s session.Snapshot) {
		// A pending notification is enough: the handler reads the latest snapshot.
		select {
		case ch <- s:
		default:
		}
	})
	return m
}

// Close unsubscribes from session changes.
func (m *Model) Close() {
	if m.cancelSub != nil {
		m.cancelSub()
		m.cancelSub = nil
	}
}

// Init starts watching the session and loads the first popular page.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.watchSession(), m.load(PopularView))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.movies.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case SearchView:
			if m.search.Focused() {
				return m.handleSearchInputKeys(msg)
			}
		}
		return m.handleListKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgListFetched:
		r := msg.data.(listResult)
		if r.view != m.view {
			return m, nil
		}
		m.loading = false
		if r.err != nil {
			m.fail(r.err)
			return m, nil
		}
		if r.view == FavoritesView && len(r.listing.Movies) == 0 && m.favPage > 0 {
			m.favPage--
			return m, m.load(FavoritesView)
		}
		m.listing = r.listing
		m.movies.Title = r.listing.Title
		cmd := m.movies.SetItems(movieItems(r.listing.Movies))
		if m.movies.Index() >= len(r.listing.Movies) {
			m.movies.ResetSelected()
		}
		return m, cmd

	case MsgDetailFetched:
		r := msg.data.(detailResult)
		if m.view != DetailView || r.id != m.movieID {
			return m, nil
		}
		m.loading = false
		if r.err != nil {
			m.fail(r.err)
			return m, nil
		}
		m.movie, m.credits = r.movie, r.credits
		return m, nil

	case MsgMutated:
		r := msg.data.(mutationResult)
		m.inFlight = false
		if r.err != nil {
			m.fail(r.err)
			return m, nil
		}
		m.status = r.kind.done()
		return m, m.load(m.view)

	case MsgLoginDone:
		m.inFlight = false
		if err := errOf(msg); err != nil {
			m.fail(err)
			return m, nil
		}
		m.snap = m.session.Snapshot()
		m.password.Reset()
		m.password.Blur()
		m.email.Blur()
		m.status = "Logged in as " + m.snap.User.Email + "."
		m.view = m.afterLogin
		m.clearList()
		return m, m.load(m.view)

	case MsgLogoutDone:
		if err := errOf(msg); err != nil {
			m.fail(err)
		}
		return m, m.syncSession()

	case MsgSessionChanged:
		return m, tea.Batch(m.watchSession(), m.syncSession())
	}
	return m, nil
}

// syncSession reads the current snapshot and leaves any authenticated view when the session has ended.
func (m *Model) syncSession() tea.Cmd {
	prev := m.snap
	m.snap = m.session.Snapshot()
	if !prev.Authenticated() || m.snap.Authenticated() {
		return nil
	}

	if m.expectLogout {
		m.expectLogout = false
		m.status = "Logged out."
	} else {
		m.logger.Warn("session ended by the server")
		m.status = services.Describe(shared.ErrTokenExpired)
	}
	m.err = nil
	m.inFlight = false
	m.movie, m.credits = nil, nil
	m.view = PopularView
	m.clearList()
	return m.load(PopularView)
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.movies.SelectedItem().(movieItem); ok {
			return m, m.openDetail(item.movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, m.turnPage(1)
	case key.Matches(msg, m.keys.prev):
		return m, m.turnPage(-1)
	case key.Matches(msg, m.keys.search):
		return m, m.openSearch()
	case key.Matches(msg, m.keys.favorites):
		if !m.snap.Authenticated() {
			return m, m.requireLogin(FavoritesView)
		}
		return m, m.switchTo(FavoritesView)
	case key.Matches(msg, m.keys.login):
		if m.snap.Authenticated() {
			return m, m.logout()
		}
		return m, m.goLogin(m.view)
	case key.Matches(msg, m.keys.retry):
		return m, m.load(m.view)
	case key.Matches(msg, m.keys.back):
		if m.view != PopularView {
			return m, m.switchTo(PopularView)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if m.view != FavoritesView {
			return m, nil
		}
		if item, ok := m.movies.SelectedItem().(movieItem); ok {
			return m, m.mutate(removeFavorite, item.movie.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Blur()
		return m, m.switchTo(PopularView)
	case tea.KeyEnter:
		q := strings.TrimSpace(m.search.Value())
		if q == "" {
			m.status = "Type a title to search."
			return m, nil
		}
		m.search.Blur()
		m.query = q
		m.searchPage = 1
		m.clearList()
		return m, m.load(SearchView)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = m.prev
		m.movie, m.credits = nil, nil
		return m, m.load(m.view)
	case key.Matches(msg, m.keys.retry):
		return m, m.load(DetailView)
	case key.Matches(msg, m.keys.favorite):
		if m.movie == nil {
			return m, nil
		}
		if !m.snap.Authenticated() {
			return m, m.requireLogin(DetailView)
		}
		kind := addFavorite
		if m.movie.Favorite {
			kind = removeFavorite
		}
		return m, m.mutate(kind, m.movie.ID)
	case key.Matches(msg, m.keys.watchLater):
		if m.movie == nil {
			return m, nil
		}
		if !m.snap.Authenticated() {
			return m, m.requireLogin(DetailView)
		}
		if m.movie.WatchLater {
			m.status = "Already in watch later."
			return m, nil
		}
		return m, m.mutate(addWatchLater, m.movie.ID)
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.email.Blur()
		m.password.Blur()
		m.password.Reset()
		m.err = nil
		m.view = m.beforeLogin
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m, m.toggleLoginFocus()
	case tea.KeyEnter:
		if m.email.Focused() {
			return m, m.toggleLoginFocus()
		}
		return m, m.login()
	}

	var cmd tea.Cmd
	if m.email.Focused() {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.search, cmd = m.search.Update(msg)
	case LoginView:
		if m.email.Focused() {
			m.email, cmd = m.email.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
	case PopularView, FavoritesView:
		m.movies, cmd = m.movies.Update(msg)
	}
	return m, cmd
}

// load fetches the data behind view v. Detail and list views are fetched again after every mutation.
func (m *Model) load(v ViewState) tea.Cmd {
	var cmd tea.Cmd
	switch v {
	case PopularView:
		cmd = m.fetchPopular(m.popularPage)
	case SearchView:
		if m.query == "" {
			return nil
		}
		cmd = m.fetchSearch(m.query, m.searchPage)
	case FavoritesView:
		cmd = m.fetchFavorites(m.favPage)
	case DetailView:
		cmd = m.fetchDetail(m.movieID)
	default:
		return nil
	}
	m.loading = true
	m.err = nil
	return cmd
}

func (m *Model) switchTo(v ViewState) tea.Cmd {
	m.view = v
	m.clearList()
	return m.load(v)
}

func (m *Model) clearList() {
	m.listing = formatter.ListView{}
	m.movies.SetItems(nil)
	m.movies.ResetSelected()
}

func (m *Model) openSearch() tea.Cmd {
	cmds := []tea.Cmd{m.search.Focus()}
	if m.view != SearchView {
		m.view = SearchView
		m.clearList()
		cmds = append(cmds, m.load(SearchView))
	}
	return tea.Batch(cmds...)
}

func (m *Model) openDetail(id int64) tea.Cmd {
	m.prev = m.view
	m.view = DetailView
	m.movieID = id
	m.movie, m.credits = nil, nil
	return m.load(DetailView)
}

// turnPage moves delta pages within the current listing. The listing's page count is already capped.
func (m *Model) turnPage(delta int) tea.Cmd {
	if m.loading {
		return nil
	}
	next := m.listing.Page + delta
	if next < 1 || next > m.listing.TotalPages {
		return nil
	}

	switch m.view {
	case PopularView:
		m.popularPage = next
	case SearchView:
		m.searchPage = next
	case FavoritesView:
		m.favPage = next - 1
	default:
		return nil
	}
	return m.load(m.view)
}

func (m *Model) requireLogin(after ViewState) tea.Cmd {
	cmd := m.goLogin(after)
	m.status = services.Describe(shared.ErrNotAuthenticated)
	return cmd
}

func (m *Model) goLogin(after ViewState) tea.Cmd {
	m.beforeLogin = m.view
	m.afterLogin = after
	m.view = LoginView
	m.err = nil
	m.status = ""
	m.password.Reset()
	m.password.Blur()
	return m.email.Focus()
}

func (m *Model) toggleLoginFocus() tea.Cmd {
	if m.email.Focused() {
		m.email.Blur()
		return m.password.Focus()
	}
	m.password.Blur()
	return m.email.Focus()
}

func (m *Model) fail(err error) {
	m.err = err
	m.status = ""
	if !errors.Is(err, shared.ErrInvalidCredentials) {
		m.logger.Error("request failed", "view", m.view, "error", err)
	}
}

func (m *Model) watchSession() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return sessionChangedMsg(s)
	}
}

func (m *Model) fetchPopular(page int) tea.Cmd {
	ctx, c := m.ctx, m.catalog
	return func() tea.Msg {
		p, err := c.Popular(ctx, page)
		if err != nil {
			return listFetchedMsg(PopularView, formatter.ListView{}, err)
		}
		return listFetchedMsg(PopularView, formatter.FromMoviePage("Popular", p), nil)
	}
}

func (m *Model) fetchSearch(query string, page int) tea.Cmd {
	ctx, c := m.ctx, m.catalog
	return func() tea.Msg {
		p, err := c.Search(ctx, query, page)
		if err != nil {
			return listFetchedMsg(SearchView, formatter.ListView{}, err)
		}
		return listFetchedMsg(SearchView, formatter.FromMoviePage(fmt.Sprintf("Results for %q", query), p), nil)
	}
}

func (m *Model) fetchFavorites(page int) tea.Cmd {
	ctx, c, size := m.ctx, m.catalog, m.pageSize
	return func() tea.Msg {
		p, err := c.Favorites(ctx, page, size)
		if err != nil {
			return listFetchedMsg(FavoritesView, formatter.ListView{}, err)
		}
		return listFetchedMsg(FavoritesView, formatter.FromFavoritesPage(p), nil)
	}
}

// fetchDetail loads the movie and its credits. Missing credits do not fail the view.
func (m *Model) fetchDetail(id int64) tea.Cmd {
	ctx, c, logger := m.ctx, m.catalog, m.logger
	return func() tea.Msg {
		movie, err := c.Movie(ctx, id)
		if err != nil {
			return detailFetchedMsg(id, nil, nil, err)
		}
		credits, err := c.Credits(ctx, id)
		if err != nil {
			logger.Warn("credits unavailable", "movie", id, "error", err)
			credits = nil
		}
		return detailFetchedMsg(id, movie, credits, nil)
	}
}

// mutate sends one favorite or watch-later change. Calls made while another is in flight are dropped.
func (m *Model) mutate(kind mutation, id int64) tea.Cmd {
	if m.inFlight {
		return nil
	}
	m.inFlight = true
	m.status = ""
	m.err = nil

	ctx, c := m.ctx, m.catalog
	return func() tea.Msg {
		var err error
		switch kind {
		case addFavorite:
			err = c.AddFavorite(ctx, id)
		case removeFavorite:
			err = c.RemoveFavorite(ctx, id)
		case addWatchLater:
			err = c.AddWatchLater(ctx, id)
		}
		return mutatedMsg(kind, id, err)
	}
}

func (m *Model) login() tea.Cmd {
	if m.inFlight {
		return nil
	}
	email, password := strings.TrimSpace(m.email.Value()), m.password.Value()
	if err := (models.Credentials{Email: email, Password: password}).Validate(); err != nil {
		m.err = fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
		return nil
	}
	m.inFlight = true
	m.err = nil

	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		return loginDoneMsg(sess.Login(ctx, email, password))
	}
}

func (m *Model) logout() tea.Cmd {
	m.expectLogout = true
	sess := m.session
	return func() tea.Msg {
		return logoutDoneMsg(sess.Logout())
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case PopularView, FavoritesView:
		body = m.renderList()
	case SearchView:
		body = m.renderSearch()
	case DetailView:
		body = m.renderDetail()
	case LoginView:
		body = m.renderLogin()
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n%s", m.renderHeader(), body, m.renderStatus(), m.help.ShortHelpView(m.keys.forView(m.view)))
}

func (m *Model) renderHeader() string {
	return fmt.Sprintf("%s %s", styles.title.Render("mvx · "+m.view.String()), styles.help.Render(m.snap.String()))
}

func (m *Model) renderList() string {
	if len(m.listing.Movies) == 0 {
		if m.loading {
			return "Loading…"
		}
		if m.err != nil {
			return ""
		}
		return styles.help.Render("No movies.")
	}
	pages := fmt.Sprintf("Page %d of %d · %d results", m.listing.Page, m.listing.TotalPages, m.listing.Total)
	return fmt.Sprintf("%s\n%s", m.movies.View(), styles.help.Render(pages))
}

func (m *Model) renderSearch() string {
	input := m.search.View()
	if m.query == "" {
		return input
	}
	return fmt.Sprintf("%s\n\n%s", input, m.renderList())
}

func (m *Model) renderDetail() string {
	if m.movie == nil {
		if m.loading {
			return "Loading…"
		}
		return ""
	}
	mv := m.movie

	var b strings.Builder
	title := mv.Title
	if y := mv.Year(); y != "" {
		title = fmt.Sprintf("%s (%s)", title, y)
	}
	b.WriteString(styles.title.Render(title) + "\n")
	b.WriteString(fmt.Sprintf("%s %.1f (%d votes)\n", styles.label.Render("Rating"), mv.VoteAverage, mv.VoteCount))
	if mv.ReleaseDate != "" {
		b.WriteString(fmt.Sprintf("%s %s\n", styles.label.Render("Released"), mv.ReleaseDate))
	}
	if f := formatter.Flags(*mv); f != "" {
		b.WriteString(styles.flag.Render(f) + "\n")
	}

	if mv.Overview != "" {
		width := 80
		if m.width > 4 && m.width-4 < width {
			width = m.width - 4
		}
		b.WriteString("\n" + lipgloss.NewStyle().Width(width).Render(mv.Overview) + "\n")
	}

	if c := m.credits; c != nil {
		if d := c.Directors(); len(d) > 0 {
			b.WriteString(fmt.Sprintf("\n%s %s\n", styles.label.Render("Directed by"), strings.Join(d, ", ")))
		}
		if len(c.Cast) > 0 {
			b.WriteString("\n" + styles.label.Render("Cast") + "\n")
			for i, p := range c.Cast {
				if i == maxCast {
					b.WriteString(fmt.Sprintf("  … and %d more\n", len(c.Cast)-maxCast))
					break
				}
				b.WriteString(fmt.Sprintf("  %s as %s\n", p.Name, p.Character))
			}
		}
	}
	return b.String()
}

func (m *Model) renderLogin() string {
	return fmt.Sprintf("%s\n%s", m.email.View(), m.password.View())
}

func (m *Model) renderStatus() string {
	switch {
	case m.err != nil && m.view == LoginView:
		return styles.err.Render(services.Describe(m.err))
	case m.err != nil:
		return styles.err.Render(services.Describe(m.err) + " (r to retry)")
	case m.inFlight:
		return styles.help.Render("Saving…")
	case m.status != "":
		return styles.ok.Render(m.status)
	default:
		return ""
	}
}
