// Package timeline keeps the in-memory collection of timelines and their
// events, writes it through to durable storage on every change, and derives
// the filtered, date-ordered views used to render a timeline.
package timeline
