package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tcgarena/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	hub *Hub
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.hub = NewHub(testutil.NopLogger())
	go s.hub.Run()
}

func (s *HubSuite) TearDownTest() {
	s.hub.Close()
	<-s.hub.Done()
}

func newTestClient(id string, buffer int) *Client {
	return &Client{
		id:          id,
		send:        make(chan []byte, buffer),
		userID:      1,
		label:       id,
		connectedAt: time.Now(),
	}
}

// register adds the client and waits until the hub has processed it
func (s *HubSuite) register(client *Client) {
	s.hub.Register(client)
	s.hub.SendTo(client, []byte("sync"))
	s.Equal("sync", s.receive(client))
}

func (s *HubSuite) receive(client *Client) string {
	select {
	case msg, ok := <-client.send:
		s.Require().True(ok, "send channel closed")
		return string(msg)
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for message")
		return ""
	}
}

func (s *HubSuite) assertClosed(client *Client) {
	select {
	case _, ok := <-client.send:
		s.False(ok, "expected closed channel")
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for close")
	}
}

func (s *HubSuite) assertNothing(client *Client) {
	select {
	case msg := <-client.send:
		s.Failf("unexpected message", "%s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *HubSuite) TestRegisterAndCount() {
	a := newTestClient("a", 8)
	b := newTestClient("b", 8)
	s.register(a)
	s.register(b)

	s.Equal(2, s.hub.ClientCount())
}

func (s *HubSuite) TestSendToUnknownClientIsIgnored() {
	stranger := newTestClient("stranger", 8)
	known := newTestClient("known", 8)
	s.register(known)

	s.hub.SendTo(stranger, []byte("hello"))
	s.hub.SendTo(known, []byte("done"))
	s.Equal("done", s.receive(known))
	s.assertNothing(stranger)
}

func (s *HubSuite) TestGroupSendOnlyReachesMembers() {
	a := newTestClient("a", 8)
	b := newTestClient("b", 8)
	c := newTestClient("c", 8)
	s.register(a)
	s.register(b)
	s.register(c)

	s.hub.Subscribe(a, RoomGroup(1))
	s.hub.Subscribe(b, RoomGroup(1))
	s.hub.Subscribe(c, RoomGroup(2))
	s.hub.SendToGroup(RoomGroup(1), []byte("started"))

	s.Equal("started", s.receive(a))
	s.Equal("started", s.receive(b))
	s.assertNothing(c)
	s.Equal(2, s.hub.GroupSize(RoomGroup(1)))
}

func (s *HubSuite) TestSubscribeUnregisteredClientIsIgnored() {
	stranger := newTestClient("stranger", 8)
	s.hub.Subscribe(stranger, RoomGroup(1))
	s.hub.SendToGroup(RoomGroup(1), []byte("x"))

	sync := newTestClient("sync", 8)
	s.register(sync)
	s.Equal(0, s.hub.GroupSize(RoomGroup(1)))
	s.assertNothing(stranger)
}

func (s *HubSuite) TestCloseGroupKeepsMembersConnected() {
	a := newTestClient("a", 8)
	b := newTestClient("b", 8)
	s.register(a)
	s.register(b)
	s.hub.Subscribe(a, "room-1")
	s.hub.Subscribe(b, "room-1")
	s.hub.Subscribe(a, "room-2")

	s.hub.CloseGroup("room-1")
	s.hub.SendToGroup("room-1", []byte("stale"))
	s.hub.SendToGroup("room-2", []byte("live"))

	s.Equal("live", s.receive(a))
	s.assertNothing(b)
	s.Equal(0, s.hub.GroupSize("room-1"))
	s.Equal(1, s.hub.GroupSize("room-2"))
	s.Equal(2, s.hub.ClientCount())

	// Unknown groups are ignored
	s.hub.CloseGroup("room-99")
	s.hub.SendTo(b, []byte("still here"))
	s.Equal("still here", s.receive(b))
}

func (s *HubSuite) TestBroadcastReachesEveryone() {
	a := newTestClient("a", 8)
	b := newTestClient("b", 8)
	s.register(a)
	s.register(b)

	s.hub.Broadcast([]byte("rooms"))

	s.Equal("rooms", s.receive(a))
	s.Equal("rooms", s.receive(b))
}

func (s *HubSuite) TestMessagesArriveInIssueOrder() {
	a := newTestClient("a", 64)
	s.register(a)
	s.hub.Subscribe(a, RoomGroup(7))

	s.hub.SendTo(a, []byte("1"))
	s.hub.SendToGroup(RoomGroup(7), []byte("2"))
	s.hub.Broadcast([]byte("3"))
	s.hub.SendTo(a, []byte("4"))

	for _, want := range []string{"1", "2", "3", "4"} {
		s.Equal(want, s.receive(a))
	}
}

func (s *HubSuite) TestUnregisterClosesSendAndLeavesGroups() {
	a := newTestClient("a", 8)
	s.register(a)
	s.hub.Subscribe(a, RoomGroup(1))

	s.hub.Unregister(a)
	s.assertClosed(a)

	s.hub.Unregister(a)
	other := newTestClient("other", 8)
	s.register(other)
	s.Equal(1, s.hub.ClientCount())
	s.Equal(0, s.hub.GroupSize(RoomGroup(1)))
}

func (s *HubSuite) TestSlowClientIsDisconnected() {
	slow := newTestClient("slow", 1)
	fast := newTestClient("fast", 8)
	s.hub.Register(slow)
	s.register(fast)

	s.hub.Broadcast([]byte("1"))
	s.hub.Broadcast([]byte("2"))
	s.Equal("1", s.receive(fast))
	s.Equal("2", s.receive(fast))

	s.Equal("1", s.receive(slow))
	s.assertClosed(slow)
	s.Equal(1, s.hub.ClientCount())
}

func (s *HubSuite) TestCloseDisconnectsClients() {
	a := newTestClient("a", 8)
	s.register(a)

	s.hub.Close()
	<-s.hub.Done()

	s.assertClosed(a)
	s.Equal(0, s.hub.ClientCount())

	// Enqueueing after close must not block
	s.hub.Broadcast([]byte("late"))
	s.hub.Register(newTestClient("late", 1))
	s.hub.Close()
}
