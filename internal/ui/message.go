package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgListFetched MsgKind = iota
	MsgDetailFetched
	MsgMutated
	MsgLoginDone
	MsgLogoutDone
	MsgSessionChanged
)

// mutation is a favorite or watch-later change.
type mutation int

const (
	addFavorite mutation = iota
	removeFavorite
	addWatchLater
)

func (k mutation) done() string {
	switch k {
	case addFavorite:
		return "Added to favorites."
	case removeFavorite:
		return "Removed from favorites."
	default:
		return "Added to watch later."
	}
}

type listResult struct {
	view    ViewState
	listing formatter.ListView
	err     error
}

type detailResult struct {
	id      int64
	movie   *models.Movie
	credits *models.Credits
	err     error
}

type mutationResult struct {
	kind mutation
	id   int64
	err  error
}

// listFetchedMsg is the constructor for [MsgListFetched]
func listFetchedMsg(view ViewState, listing formatter.ListView, err error) Msg {
	return Msg{kind: MsgListFetched, data: listResult{view, listing, err}}
}

// detailFetchedMsg is the constructor for [MsgDetailFetched]
func detailFetchedMsg(id int64, movie *models.Movie, credits *models.Credits, err error) Msg {
	return Msg{kind: MsgDetailFetched, data: detailResult{id, movie, credits, err}}
}

// mutatedMsg is the constructor for [MsgMutated]
func mutatedMsg(kind mutation, id int64, err error) Msg {
	return Msg{kind: MsgMutated, data: mutationResult{kind, id, err}}
}

// loginDoneMsg is the constructor for [MsgLoginDone]
func loginDoneMsg(err error) Msg {
	return Msg{kind: MsgLoginDone, data: err}
}

// logoutDoneMsg is the constructor for [MsgLogoutDone]
func logoutDoneMsg(err error) Msg {
	return Msg{kind: MsgLogoutDone, data: err}
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]
func sessionChangedMsg(s session.Snapshot) Msg {
	return Msg{kind: MsgSessionChanged, data: s}
}

func errOf(msg Msg) error {
	err, _ := msg.data.(error)
	return err
}
