package server

import (
	"fmt"

	"github.com/desertthunder/mvx/internal/models"
)

func movie(id int64, title, date string, vote float64, votes int, popularity float64, overview string) models.Movie {
	return models.Movie{
		ID:          id,
		Title:       title,
		ReleaseDate: date,
		VoteAverage: vote,
		VoteCount:   votes,
		Popularity:  popularity,
		Overview:    overview,
		PosterPath:  fmt.Sprintf("/w500/%d.jpg", id),
	}
}

// SeedMovies returns the development catalog, enough for three pages of popular results.
func SeedMovies() []models.Movie {
	return []models.Movie{
		movie(550, "Fight Club", "1999-10-15", 8.4, 29000, 98.1, "An insomniac office worker and a soap salesman form an underground fight club."),
		movie(680, "Pulp Fiction", "1994-09-10", 8.5, 27000, 97.4, "The lives of two mob hitmen, a boxer and a pair of diner bandits intertwine."),
		movie(13, "Forrest Gump", "1994-06-23", 8.5, 26000, 96.8, "A man with a low IQ witnesses and influences decades of American history."),
		movie(155, "The Dark Knight", "2008-07-16", 8.5, 32000, 96.2, "Batman faces the Joker, a criminal mastermind who plunges Gotham into anarchy."),
		movie(27205, "Inception", "2010-07-15", 8.4, 36000, 95.9, "A thief who steals secrets through dream-sharing is asked to plant an idea."),
		movie(157336, "Interstellar", "2014-11-05", 8.4, 34000, 95.5, "Explorers travel through a wormhole in search of a new home for humanity."),
		movie(603, "The Matrix", "1999-03-30", 8.2, 25000, 94.7, "A hacker learns the world he lives in is a simulation."),
		movie(238, "The Godfather", "1972-03-14", 8.7, 20000, 94.3, "The aging patriarch of a crime dynasty transfers control to his reluctant son."),
		movie(278, "The Shawshank Redemption", "1994-09-23", 8.7, 26000, 93.8, "Two imprisoned men bond over years, finding redemption through acts of decency."),
		movie(424, "Schindler's List", "1993-12-15", 8.6, 15000, 92.6, "A businessman saves the lives of more than a thousand refugees during the Holocaust."),
		movie(122, "The Lord of the Rings: The Return of the King", "2003-12-01", 8.5, 23000, 92.1, "The final confrontation for Middle-earth begins."),
		movie(120, "The Lord of the Rings: The Fellowship of the Ring", "2001-12-18", 8.4, 24000, 91.7, "A hobbit sets out to destroy a powerful ring."),
		movie(121, "The Lord of the Rings: The Two Towers", "2002-12-18", 8.4, 21000, 91.2, "The fellowship is broken and the war for Middle-earth spreads."),
		movie(769, "GoodFellas", "1990-09-12", 8.5, 12000, 90.4, "The rise and fall of a mob associate over three decades."),
		movie(496243, "Parasite", "2019-05-30", 8.5, 17000, 90.1, "A poor family schemes to become employed by a wealthy household."),
		movie(129, "Spirited Away", "2001-07-20", 8.5, 16000, 89.6, "A girl wanders into a world ruled by gods, witches and spirits."),
		movie(497, "The Green Mile", "1999-12-10", 8.5, 17000, 89.2, "A death row guard discovers an inmate with a miraculous gift."),
		movie(389, "12 Angry Men", "1957-04-10", 8.5, 8000, 88.7, "A jury holdout forces his colleagues to reconsider the evidence."),
		movie(11, "Star Wars", "1977-05-25", 8.2, 20000, 88.3, "Luke Skywalker joins forces to save the galaxy from the Empire."),
		movie(1891, "The Empire Strikes Back", "1980-05-20", 8.4, 17000, 87.9, "The Rebels scatter after the Empire attacks their base on Hoth."),
		movie(105, "Back to the Future", "1985-07-03", 8.3, 19000, 87.4, "A teenager is accidentally sent thirty years into the past."),
		movie(274, "The Silence of the Lambs", "1991-02-01", 8.3, 15000, 86.9, "An FBI trainee seeks help from an imprisoned cannibal."),
		movie(807, "Se7en", "1995-09-22", 8.4, 20000, 86.5, "Two detectives hunt a serial killer who uses the seven deadly sins."),
		movie(98, "Gladiator", "2000-05-01", 8.2, 18000, 86.0, "A betrayed Roman general seeks vengeance as a gladiator."),
		movie(1124, "The Prestige", "2006-10-17", 8.2, 15000, 85.6, "Two rival magicians engage in a battle to create the ultimate illusion."),
		movie(77, "Memento", "2000-10-11", 8.2, 14000, 85.1, "A man with short-term memory loss hunts his wife's killer."),
		movie(1422, "The Departed", "2006-10-05", 8.2, 14000, 84.7, "An undercover cop and a mole in the police try to identify each other."),
		movie(244786, "Whiplash", "2014-10-10", 8.4, 14000, 84.2, "A young drummer is pushed to his limits by a ruthless instructor."),
		movie(8587, "The Lion King", "1994-06-24", 8.3, 17000, 83.8, "A lion cub flees his kingdom after his father's death."),
		movie(862, "Toy Story", "1995-10-30", 8.0, 17000, 83.3, "A cowboy doll feels threatened by a new spaceman toy."),
		movie(857, "Saving Private Ryan", "1998-07-24", 8.2, 14000, 82.9, "Soldiers go behind enemy lines to retrieve a paratrooper."),
		movie(329, "Jurassic Park", "1993-06-11", 7.9, 15000, 82.4, "A theme park's cloned dinosaurs break loose."),
		movie(578, "Jaws", "1975-06-20", 7.7, 10000, 82.0, "A police chief hunts a great white shark terrorizing a beach town."),
		movie(85, "Raiders of the Lost Ark", "1981-06-12", 7.9, 12000, 81.5, "An archaeologist races the Nazis to find the Ark of the Covenant."),
		movie(348, "Alien", "1979-05-25", 8.2, 14000, 81.1, "The crew of a commercial spacecraft encounters a deadly lifeform."),
		movie(218, "The Terminator", "1984-10-26", 7.7, 12000, 80.6, "A cyborg assassin is sent back in time to kill a woman."),
		movie(280, "Terminator 2: Judgment Day", "1991-07-03", 8.1, 12000, 80.2, "A reprogrammed cyborg protects a boy from a more advanced model."),
		movie(78, "Blade Runner", "1982-06-25", 7.9, 13000, 79.7, "A blade runner must pursue and terminate four replicants."),
		movie(62, "2001: A Space Odyssey", "1968-04-02", 8.1, 11000, 79.3, "Humanity finds a mysterious monolith affecting evolution."),
		movie(194, "Amelie", "2001-04-25", 7.9, 11000, 78.8, "A shy waitress decides to change the lives of those around her."),
		movie(640, "Catch Me If You Can", "2002-12-16", 8.0, 15000, 78.4, "A con man is pursued by an FBI agent."),
		movie(14, "American Beauty", "1999-09-15", 8.0, 12000, 77.9, "A suburban father has a midlife crisis."),
		movie(637, "Life Is Beautiful", "1997-12-20", 8.5, 13000, 77.5, "A father uses humor to shield his son in a concentration camp."),
		movie(510, "One Flew Over the Cuckoo's Nest", "1975-11-18", 8.4, 10000, 77.0, "A criminal pleads insanity and is admitted to a mental institution."),
		movie(539, "Psycho", "1960-06-22", 8.4, 10000, 76.6, "A secretary embezzles money and checks into a remote motel."),
	}
}

// SeedCredits returns cast and crew for a few of the seeded movies.
func SeedCredits() []models.Credits {
	return []models.Credits{
		{
			MovieID: 550,
			Cast: []models.CastMember{
				{ID: 287, Name: "Brad Pitt", Character: "Tyler Durden"},
				{ID: 819, Name: "Edward Norton", Character: "The Narrator"},
				{ID: 1283, Name: "Helena Bonham Carter", Character: "Marla Singer"},
			},
			Crew: []models.CrewMember{
				{ID: 7467, Name: "David Fincher", Job: "Director", Department: "Directing"},
				{ID: 7469, Name: "Jim Uhls", Job: "Screenplay", Department: "Writing"},
			},
		},
		{
			MovieID: 680,
			Cast: []models.CastMember{
				{ID: 8891, Name: "John Travolta", Character: "Vincent Vega"},
				{ID: 2231, Name: "Samuel L. Jackson", Character: "Jules Winnfield"},
				{ID: 139, Name: "Uma Thurman", Character: "Mia Wallace"},
			},
			Crew: []models.CrewMember{
				{ID: 138, Name: "Quentin Tarantino", Job: "Director", Department: "Directing"},
			},
		},
		{
			MovieID: 27205,
			Cast: []models.CastMember{
				{ID: 6193, Name: "Leonardo DiCaprio", Character: "Cobb"},
				{ID: 24045, Name: "Joseph Gordon-Levitt", Character: "Arthur"},
				{ID: 27578, Name: "Elliot Page", Character: "Ariadne"},
			},
			Crew: []models.CrewMember{
				{ID: 525, Name: "Christopher Nolan", Job: "Director", Department: "Directing"},
				{ID: 947, Name: "Hans Zimmer", Job: "Original Music Composer", Department: "Sound"},
			},
		},
		{
			MovieID: 603,
			Cast: []models.CastMember{
				{ID: 6384, Name: "Keanu Reeves", Character: "Neo"},
				{ID: 2975, Name: "Laurence Fishburne", Character: "Morpheus"},
				{ID: 530, Name: "Carrie-Anne Moss", Character: "Trinity"},
			},
			Crew: []models.CrewMember{
				{ID: 9340, Name: "Lana Wachowski", Job: "Director", Department: "Directing"},
				{ID: 9339, Name: "Lilly Wachowski", Job: "Director", Department: "Directing"},
			},
		},
	}
}
