// Package ui implements an interactive terminal movie browser using bubbletea's Elm architecture.
//
// Views:
//  1. [PopularView] : Browse popular movies, n/p to page
//  2. [SearchView] : Prompt for a query and browse the results
//  3. [DetailView] : Overview, credits, favorite toggle and watch-later
//  4. [FavoritesView] : The logged-in user's favorites
//  5. [LoginView] : Email and password form
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Catalog calls run as commands and report back through Msg values; responses for a view the user already left are dropped.
//
// Favorite and watch-later changes are never applied locally. While one is in flight further changes are ignored,
// and once it succeeds the current view is fetched again so the flags shown always come from the server.
//
// Session changes arrive through [session.Manager.Subscribe]. When the server ends the session the model returns to
// the popular list and says so.
package ui
