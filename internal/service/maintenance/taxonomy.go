package maintenance

import "github.com/lupinelegend/f1-radio-archive/internal/model"

// DefaultTaxonomy is the fixed category set used for tagging
var DefaultTaxonomy = []model.Category{
	{Name: "Overtake", Description: "Radio messages about overtaking maneuvers"},
	{Name: "Strategy", Description: "Pit stop strategy and race tactics"},
	{Name: "Rage", Description: "Frustrated or angry radio messages"},
	{Name: "Celebration", Description: "Victory celebrations and achievements"},
	{Name: "Team Orders", Description: "Team instructions to drivers"},
	{Name: "Technical Issue", Description: "Car problems and technical difficulties"},
	{Name: "Safety Car", Description: "Safety car and VSC related messages"},
	{Name: "Pit Stop", Description: "Pit stop communications"},
	{Name: "Weather", Description: "Weather conditions and tire choices"},
	{Name: "Incident", Description: "Crashes, penalties, and incidents"},
	{Name: "Funny", Description: "Humorous or entertaining moments"},
	{Name: "Motivational", Description: "Encouraging and motivational messages"},
	{Name: "Complaint", Description: "Complaints about other drivers or conditions"},
	{Name: "Information", Description: "General race information and updates"},
	{Name: "Viral", Description: "Super popular and widely shared radio moments"},
}
