package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/fishstation/internal/console"
	"github.com/desertthunder/fishstation/internal/formatter"
	"github.com/desertthunder/fishstation/internal/playback"
	"github.com/desertthunder/fishstation/internal/session"
	"github.com/desertthunder/fishstation/internal/shared"
	"github.com/desertthunder/fishstation/internal/ui"
)

// catalogue is the fixed menu. Command numbers come from flattening the groups in order.
func (r *Runner) catalogue() []console.Group {
	return []console.Group{
		{Label: "search and play", Entries: []console.Entry{
			{Label: "search", Run: r.search},
			{Label: "play", Run: r.play},
			{Label: "stop", Run: r.stop},
			{Label: "show", Run: r.show},
			{Label: "exit", Run: r.exit},
		}},
		{Label: "playlist mode", Entries: []console.Entry{
			{Label: "select", Run: r.selectPlaylist},
			{Label: "play_cur", Run: r.playCurrent},
			{Label: "play_cur_rdm", Run: r.playCurrentShuffled},
			{Label: "del_cur", Run: r.deleteCurrent},
			{Label: "show_cur", Run: r.showCurrent},
			{Label: "show_all", Run: r.showAll},
			{Label: "create_new", Run: r.createPlaylist},
			{Label: "export_cur", Run: r.exportCurrent},
		}},
		{Label: "track opts", Entries: []console.Entry{
			{Label: "add_track", Run: r.addTrack},
			{Label: "delete_track", Run: r.deleteTrack},
		}},
	}
}

func (r *Runner) search(ctx context.Context) {
	var keyword string
	for {
		line, err := r.prompter.ReadLine("please input the keyword (-1 to cancel): ")
		if err != nil || line == "-1" {
			return
		}
		if line != "" {
			keyword = line
			break
		}
		r.writePlain("%s\n", ui.Warn("keyword must not be empty"))
	}

	count, err := r.source.Search(ctx, keyword)
	if err != nil {
		r.report(err)
		return
	}
	tracks, err := r.source.FetchResults(ctx)
	if err != nil {
		r.report(err)
		return
	}

	r.state.SetResults(tracks)
	if len(tracks) == 0 {
		r.writePlain("no results for %q\n", keyword)
		return
	}

	r.writePlain("find %d results\n", count)
	r.listResults()
}

func (r *Runner) play(ctx context.Context) {
	if len(r.state.Results()) == 0 {
		r.report(shared.ErrNoSearchResults)
		return
	}

	i, ok := r.readIndex("please input the track index: ")
	if !ok {
		return
	}
	track, err := r.state.Result(i)
	if err != nil {
		r.report(err)
		return
	}

	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.setCancel(&r.cancelPlay, cancel)
	defer r.setCancel(&r.cancelPlay, nil)

	started, err := r.player.PlayTrack(playCtx, track)
	switch {
	case err != nil:
		r.report(err)
	case !started:
		r.writePlain("%s\n", ui.Warn("could not play, this track may need a VIP account"))
	case r.player.State() == playback.Stopped:
		r.writePlain("%s\n", ui.Warn("playback stopped"))
	}
}

func (r *Runner) stop(ctx context.Context) {
	if err := r.player.Stop(ctx); err != nil {
		r.report(err)
		return
	}
	r.writePlain("%s\n", ui.Ok("stopped"))
}

func (r *Runner) show(context.Context) {
	if len(r.state.Results()) == 0 {
		r.writePlain("%s\n", ui.Warn("please search first"))
		return
	}
	r.listResults()
}

func (r *Runner) exit(context.Context) {
	r.running = false
	r.writePlain("bye\n")
}

func (r *Runner) selectPlaylist(context.Context) {
	if !r.listPlaylists() {
		return
	}

	i, ok := r.readIndex("please input the playlist index: ")
	if !ok {
		return
	}
	if err := r.state.SelectPlaylist(i); err != nil {
		r.report(err)
		return
	}

	pl, _ := r.state.Playlist(session.Current)
	r.writePlain("%s\n", ui.Ok("selected "+pl.Name))
}

func (r *Runner) playCurrent(ctx context.Context) {
	r.playSelected(ctx, playback.Sequential)
}

func (r *Runner) playCurrentShuffled(ctx context.Context) {
	r.playSelected(ctx, playback.Shuffled)
}

func (r *Runner) playSelected(ctx context.Context, mode playback.Mode) {
	pl, err := r.state.Playlist(session.Current)
	if err != nil {
		r.report(err)
		return
	}

	// The traversal outlives this command and only ends through Stop.
	err = r.player.PlayPlaylist(context.WithoutCancel(ctx), pl.Tracks, mode, r.state.PlayingTracker())
	switch {
	case errors.Is(err, shared.ErrTraversalActive) && r.player.State() == playback.Stopped:
		r.writePlain("%s\n", ui.Warn("the stopped playlist is finishing its current track, try again shortly"))
	case err != nil:
		r.report(err)
	default:
		r.writePlain("%s\n", ui.Ok("playing playlist "+pl.Name))
	}
}

func (r *Runner) deleteCurrent(context.Context) {
	ok, err := r.state.DeletePlaylist(session.Current)
	switch {
	case err != nil:
		r.report(err)
	case !ok:
		r.writePlain("cancelled\n")
	default:
		r.writePlain("%s\n", ui.Ok("playlist deleted"))
	}
}

func (r *Runner) showCurrent(context.Context) {
	pl, err := r.state.Playlist(session.Current)
	if err != nil {
		r.report(err)
		return
	}

	r.writePlainHeader(pl.Name)
	if len(pl.Tracks) == 0 {
		r.writePlain("playlist is empty\n")
		return
	}

	playing, isPlaying := r.state.Playing()
	for i, t := range pl.Tracks {
		r.writePlain("%s\n", formatter.TrackLine(i, t, isPlaying && i == playing))
	}
}

func (r *Runner) showAll(context.Context) {
	r.listPlaylists()
}

func (r *Runner) createPlaylist(context.Context) {
	name, err := r.prompter.ReadLine("please input the playlist name: ")
	if err != nil {
		return
	}
	if err := r.state.CreatePlaylist(name); err != nil {
		r.report(err)
		if !errors.Is(err, shared.ErrStorage) {
			return
		}
	}
	r.writePlain("%s\n", ui.Ok("created playlist "+strings.TrimSpace(name)))
}

func (r *Runner) exportCurrent(context.Context) {
	pl, err := r.state.Playlist(session.Current)
	if err != nil {
		r.report(err)
		return
	}

	line, err := r.prompter.ReadLine("export format (csv, markdown, text) [csv]: ")
	if err != nil {
		return
	}
	format, err := formatter.ParseFormat(line)
	if err != nil {
		r.report(fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}

	base, err := r.prompter.ReadLine("output path (empty for default): ")
	if err != nil {
		return
	}

	files, err := formatter.WriteExport(pl, format, base)
	if err != nil {
		r.report(err)
		return
	}
	for _, f := range files {
		r.writePlain("%s\n", ui.Ok("exported "+f))
	}
}

func (r *Runner) addTrack(context.Context) {
	if len(r.state.Results()) == 0 {
		r.report(shared.ErrNoSearchResults)
		return
	}

	r.listResults()
	ti, ok := r.readIndex("please input the track index: ")
	if !ok {
		return
	}

	pi, ok := r.readPlaylistIndex()
	if !ok {
		return
	}

	if err := r.state.AddTrack(ti, pi); err != nil {
		r.report(err)
		if !errors.Is(err, shared.ErrStorage) {
			return
		}
	}
	r.writePlain("%s\n", ui.Ok("track added"))
}

func (r *Runner) deleteTrack(context.Context) {
	pi, ok := r.readPlaylistIndex()
	if !ok {
		return
	}
	pl, err := r.state.Playlist(pi)
	if err != nil {
		r.report(err)
		return
	}
	if len(pl.Tracks) == 0 {
		r.writePlain("playlist is empty\n")
		return
	}

	for i, t := range pl.Tracks {
		r.writePlain("%s\n", formatter.TrackLine(i, t, false))
	}
	ti, ok := r.readIndex("please input the track index: ")
	if !ok {
		return
	}
	if ti >= 0 && ti < len(pl.Tracks) {
		r.writePlain("deleting: %s\n", formatter.TrackLine(ti, pl.Tracks[ti], false))
	}

	deleted, err := r.state.RemoveTrack(ti, pi)
	switch {
	case err != nil:
		r.report(err)
	case !deleted:
		r.writePlain("cancelled\n")
	default:
		r.writePlain("%s\n", ui.Ok("track deleted"))
	}
}

// readPlaylistIndex lists playlists and asks for one, where -1 means the selected playlist.
func (r *Runner) readPlaylistIndex() (int, bool) {
	if !r.listPlaylists() {
		return 0, false
	}
	return r.readIndex("please input the playlist index (-1 for the selected one): ")
}

// readIndex asks for an index. An empty answer cancels the command.
func (r *Runner) readIndex(prompt string) (int, bool) {
	i, err := console.ReadIndex(r.prompter, prompt)
	if errors.Is(err, console.ErrCancelled) {
		r.writePlain("cancelled\n")
	}
	return i, err == nil
}

func (r *Runner) listResults() {
	for i, t := range r.state.Results() {
		r.writePlain("%s\n", formatter.ResultLine(i, t))
	}
}

// listPlaylists prints every playlist and reports whether there was any.
func (r *Runner) listPlaylists() bool {
	playlists := r.state.Playlists()
	if len(playlists) == 0 {
		r.report(shared.ErrNoPlaylists)
		return false
	}

	selected, _ := r.state.Selected()
	for i, pl := range playlists {
		r.writePlain("%s\n", formatter.PlaylistLine(i, pl, i == selected))
	}
	return true
}
