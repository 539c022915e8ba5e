package planning

import "time"

// EventInfo is everything the detail modal of a planning entry tells about it.
type EventInfo struct {
	Status      string
	Subject     string
	Type        string
	Description string
	IsExam      bool

	Resources []Resource
	Staff     []Person
	Students  []Person
	Groups    []Group
	Courses   []Course
}

// Resource is a room or a piece of equipment booked for an entry.
type Resource struct {
	Code string
	Name string
}

func (r Resource) String() string {
	return r.Name + " (" + r.Code + ")"
}

type Person struct {
	LastName  string
	FirstName string
}

func (p Person) String() string {
	return p.LastName + " " + p.FirstName
}

type Group struct {
	Code string
	Name string
}

func (g Group) String() string {
	return g.Name
}

type Course struct {
	Code   string
	Name   string
	Module string
}

func (c Course) String() string {
	return c.Name + ", " + c.Module
}

// Event is a fully assembled planning entry, ready to be written to a feed.
type Event struct {
	Id          string
	Name        string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Description string
}
