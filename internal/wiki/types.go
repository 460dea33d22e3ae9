package wiki

// Wire shapes of the MediaWiki action API with formatversion=2.

type queryResponse struct {
	Query *queryBody `json:"query"`
}

type queryBody struct {
	Pages        []wirePage     `json:"pages"`
	Users        []wireUser     `json:"users"`
	UserContribs []wireUserEdit `json:"usercontribs"`
}

type wirePage struct {
	PageID    int            `json:"pageid"`
	Title     string         `json:"title"`
	Missing   bool           `json:"missing"`
	Invalid   bool           `json:"invalid"`
	Extract   string         `json:"extract"`
	FullURL   string         `json:"fullurl"`
	Length    int            `json:"length"`
	Revisions []wireRevision `json:"revisions"`
}

type wireRevision struct {
	RevID     int        `json:"revid"`
	ParentID  int        `json:"parentid"`
	Timestamp string     `json:"timestamp"`
	User      string     `json:"user"`
	Comment   string     `json:"comment"`
	Size      *int       `json:"size"`
	Slots     *wireSlots `json:"slots"`
}

type wireSlots struct {
	Main struct {
		ContentModel string `json:"contentmodel"`
		Content      string `json:"content"`
	} `json:"main"`
}

type wireUser struct {
	UserID       int    `json:"userid"`
	Name         string `json:"name"`
	EditCount    int    `json:"editcount"`
	Registration string `json:"registration"`
	BlockID      int    `json:"blockid"`
	BlockedBy    string `json:"blockedby"`
	Missing      bool   `json:"missing"`
	Invalid      bool   `json:"invalid"`
}

type wireUserEdit struct {
	RevID     int    `json:"revid"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	Comment   string `json:"comment"`
	Size      *int   `json:"size"`
}

type wirePageviews struct {
	Items []struct {
		Timestamp string `json:"timestamp"`
		Views     int64  `json:"views"`
	} `json:"items"`
}
