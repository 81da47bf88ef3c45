// Package segment groups a video's subtitle frames into runs that show the
// same on-screen subtitle.
//
// Decisions are made from raw pixel statistics only. A frame whose luminance
// standard deviation falls below the blank threshold carries no subtitle and
// always ends the open segment. Two consecutive content frames belong to the
// same segment when their mean absolute sample difference stays below the
// diff threshold. Segments shorter than the minimum duration are dropped after
// the pass; they are never merged into neighbours.
package segment
