package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	back       key.Binding
	next       key.Binding
	prev       key.Binding
	search     key.Binding
	favorites  key.Binding
	favorite   key.Binding
	watchLater key.Binding
	remove     key.Binding
	login      key.Binding
	retry      key.Binding
	tab        key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		prev:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
		search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		favorites:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "favorites")),
		favorite:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "toggle favorite")),
		watchLater: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watch later")),
		remove:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		login:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "login/logout")),
		retry:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		tab:        key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.next, k.prev, k.search, k.favorites},
		{k.favorite, k.watchLater, k.remove},
		{k.login, k.retry, k.quit},
	}
}

// forView returns the short help shown under each view.
func (k keyMap) forView(v ViewState) []key.Binding {
	switch v {
	case DetailView:
		return []key.Binding{k.favorite, k.watchLater, k.retry, k.back, k.quit}
	case LoginView:
		return []key.Binding{k.tab, k.enter, k.back}
	case FavoritesView:
		return []key.Binding{k.enter, k.remove, k.next, k.prev, k.back, k.quit}
	case SearchView:
		return []key.Binding{k.enter, k.next, k.prev, k.search, k.back, k.quit}
	default:
		return []key.Binding{k.enter, k.next, k.prev, k.search, k.favorites, k.login, k.quit}
	}
}
