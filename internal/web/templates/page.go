package templates

import "github.com/a-h/templ"

// PageView is the initial page. The quiz itself arrives over the socket.
type PageView struct {
	Title         string
	SocketPath    string
	IncludeDecoys bool
	Score         ScoreView
}

type pageData struct {
	PageView
	Score  scoreData
	Inline fragment
}

func Page(v PageView) templ.Component {
	return component("page", pageData{PageView: v, Score: scoreData{ScoreView: v.Score}})
}
