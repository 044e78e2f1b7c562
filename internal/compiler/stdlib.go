package compiler

// The bundled standard library: logical name to verbatim easyjs source.
// These snippets are opaque strings to the compiler; they are resolved by
// the source loader between custom libs and the file system.

const stdLib = `// Core easyjs helpers

macro print(...args) {
	console.log(#args)
}

macro throw(message) {
	javascript {
		throw new Error(#message)
	}
}

macro const(assignment) {
	javascript {
		const #assignment
	}
}
`

const dateLib = `// Get the days between 2 dates
macro days_between_dates(d1, d2) {
	Math.ceil(Math.abs(#d1 - #d2) / (1000 * 60 * 60 * 24))
}

// Get the weekday of a date.
macro get_week_day(d) {
	#d.toLocaleString('en-US', {weekday: 'long'})
}

// Is a date a weekend?
macro is_weekend(d) {
	[5,6].indexOf(#d.getDay()) != -1
}
`

const mathLib = `macro max(a, b) {
	Math.max(#a, #b)
}

macro min(a, b) {
	Math.min(#a, #b)
}

macro random_int(max) {
	Math.floor(Math.random() * #max)
}
`

const jsonLib = `macro to_json(obj) {
	JSON.stringify(#obj)
}

macro from_json(text) {
	JSON.parse(#text)
}
`

const domLib = `macro query(selector) {
	document.querySelector(#selector)
}

macro query_all(selector) {
	document.querySelectorAll(#selector)
}
`

const httpLib = `macro fetch_json(url) {
	await fetch(#url).then(fn(r) { return r.json() })
}
`

var stdTable = map[string]string{
	"std":  stdLib,
	"date": dateLib,
	"math": mathLib,
	"json": jsonLib,
	"dom":  domLib,
	"http": httpLib,
}

// LoadStd returns the standard-library snippet for name, or "" when name is
// not a bundled library.
func LoadStd(name string) string {
	return stdTable[name]
}
