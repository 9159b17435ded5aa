// Package table implements the Texas Hold'em room and hand engine.
//
// A Room seats players in join order. While a hand is active the room is
// bound to exactly one Game, which tracks the betting phase, the community
// cards and the pot. All mutation goes through Engine, which serializes
// operations per room, persists through a Store and publishes events to an
// EventSink once the new state has been saved.
//
// # Basic Usage
//
//	eng := table.NewEngine(store.NewMemory(), hub, logger)
//	room, _ := eng.CreateRoom(ctx, "friday", 6)
//	alice, _ := eng.CreatePlayer(ctx, "alice")
//	bob, _ := eng.CreatePlayer(ctx, "bob")
//	eng.Join(ctx, room.ID, alice.ID)
//	eng.Join(ctx, room.ID, bob.ID)
//	st, _ := eng.StartHand(ctx, room.ID)
//	eng.Act(ctx, room.ID, st.Room.CurrentPlayerTurn, table.Raise, 2)
//
// # Hand Flow
//
// A hand starts in pre-flop with two hole cards per seat. Every action hands
// the turn to the next seat that has not folded. When every remaining seat
// is finished the phase advances automatically: flop deals three community
// cards, turn and river one each, and advancing past the river resolves the
// showdown. Folding down to a single seat resolves the showdown at once.
//
// # Events
//
// Events are published on the topic returned by Topic, in the order the
// transitions happened: updatePlayers, gameStarted, playerAction,
// phaseChanged and showdown.
//
// # Deterministic Testing
//
// Use WithRand to fix the shuffle and WithClock with a quartz mock to fix
// timestamps:
//
//	eng := table.NewEngine(st, sink, logger,
//	    table.WithRand(randutil.New(42)),
//	    table.WithClock(quartz.NewMock(t)))
package table
