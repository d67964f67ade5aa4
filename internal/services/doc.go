// Package services defines the [MusicSource] contract used by the console and implements it for music stations.
//
// # MusicSource Interface
//
// A source is split in two halves so stations can mix and match:
//   - [Searcher] : keyword search plus the rows of the last search
//   - [Surface] : starting playback of a playable URL and returning to the home page
//
// [Station] composes the two with a [KeywordNormalizer].
//
// # NetEase Implementation
//
// [NeteaseSearcher] calls the web search API (/api/search/get/web) and maps songs to [models.Track].
// Durations arrive in milliseconds and are truncated to whole seconds.
//
// # HTML Implementation
//
// [HTMLSearcher] loads a search page and reads rows through CSS selectors from the station config.
// The singer selector is a fallback list; the first selector with text wins.
//
// # Playback Surface
//
// [BrowserSurface] probes the playable URL before opening it in the system browser.
// Tracks that need a paid account redirect to an HTML page and are reported as not started.
//
// # Error Handling
//
// Every adapter failure is a [shared.SourceError] naming the failed operation. The console treats them as recoverable.
// All outbound requests go through [StationClient], which waits on a shared rate limiter.
package services
