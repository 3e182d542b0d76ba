package openf1

// TeamRadioMessage is one entry of /team_radio
type TeamRadioMessage struct {
	Date         string `json:"date"`
	DriverNumber int    `json:"driver_number"`
	MeetingKey   int    `json:"meeting_key"`
	RecordingURL string `json:"recording_url"`
	SessionKey   int    `json:"session_key"`
}

// Session is one entry of /sessions
type Session struct {
	CircuitKey       int    `json:"circuit_key"`
	CircuitShortName string `json:"circuit_short_name"`
	CountryCode      string `json:"country_code"`
	CountryKey       int    `json:"country_key"`
	CountryName      string `json:"country_name"`
	DateEnd          string `json:"date_end"`
	DateStart        string `json:"date_start"`
	GMTOffset        string `json:"gmt_offset"`
	Location         string `json:"location"`
	MeetingKey       int    `json:"meeting_key"`
	SessionKey       int    `json:"session_key"`
	SessionName      string `json:"session_name"`
	SessionType      string `json:"session_type"`
	Year             int    `json:"year"`
}

// Driver is one entry of /drivers
type Driver struct {
	BroadcastName string `json:"broadcast_name"`
	CountryCode   string `json:"country_code"`
	DriverNumber  int    `json:"driver_number"`
	FirstName     string `json:"first_name"`
	FullName      string `json:"full_name"`
	HeadshotURL   string `json:"headshot_url"`
	LastName      string `json:"last_name"`
	MeetingKey    int    `json:"meeting_key"`
	NameAcronym   string `json:"name_acronym"`
	SessionKey    int    `json:"session_key"`
	TeamColour    string `json:"team_colour"`
	TeamName      string `json:"team_name"`
}

// Meeting is one entry of /meetings
type Meeting struct {
	CircuitKey          int    `json:"circuit_key"`
	CircuitShortName    string `json:"circuit_short_name"`
	CountryCode         string `json:"country_code"`
	CountryKey          int    `json:"country_key"`
	CountryName         string `json:"country_name"`
	DateStart           string `json:"date_start"`
	GMTOffset           string `json:"gmt_offset"`
	Location            string `json:"location"`
	MeetingKey          int    `json:"meeting_key"`
	MeetingName         string `json:"meeting_name"`
	MeetingOfficialName string `json:"meeting_official_name"`
	Year                int    `json:"year"`
}

// SessionParams filters /sessions; zero values are omitted
type SessionParams struct {
	SessionKey  int
	MeetingKey  int
	Year        int
	SessionName string
}

// DriverParams filters /drivers
type DriverParams struct {
	SessionKey   int
	DriverNumber int
}

// TeamRadioParams filters /team_radio. Dates are passed through verbatim.
type TeamRadioParams struct {
	SessionKey   int
	DriverNumber int
	DateStart    string
	DateEnd      string
}

// MeetingParams filters /meetings
type MeetingParams struct {
	MeetingKey int
	Year       int
}
