package command

// Install registers the music command set with its middleware chains.
// Mutating commands require being in the session's voice channel; anything
// that changes where or how the player runs additionally requires a
// privileged invoker. Connect skips the same-channel check so a DJ can
// summon or move the bot from anywhere.
func Install(r *Registry, deps *Deps) {
	sameChannel := WithSameVoiceChannel(deps)
	privileged := WithPrivilege(deps.Gate)

	open := func(cmd Command) Command {
		return Chain(cmd, WithLogging, WithGuildOnly)
	}
	member := func(cmd Command) Command {
		return Chain(cmd, WithLogging, WithGuildOnly, sameChannel)
	}
	dj := func(cmd Command) Command {
		return Chain(cmd, WithLogging, WithGuildOnly, sameChannel, privileged)
	}

	r.Register(open(&QueueCommand{Deps: deps}))
	r.Register(open(&NowPlayingCommand{Deps: deps}))

	r.Register(member(&PlayCommand{Deps: deps}))
	r.Register(member(&SkipCommand{Deps: deps}))

	r.Register(Chain(&ConnectCommand{Deps: deps}, WithLogging, WithGuildOnly, privileged))

	r.Register(dj(&PauseCommand{Deps: deps}))
	r.Register(dj(&ResumeCommand{Deps: deps}))
	r.Register(dj(&StopCommand{Deps: deps}))
	r.Register(dj(&DisconnectCommand{Deps: deps}))
	r.Register(dj(&SeekCommand{Deps: deps}))
	r.Register(dj(&VolumeCommand{Deps: deps}))
	r.Register(dj(&ShuffleCommand{Deps: deps}))
	r.Register(dj(&RepeatCommand{Deps: deps}))
}
